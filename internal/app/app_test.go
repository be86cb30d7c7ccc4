package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/travel-planner-api/internal/catalog"
	"github.com/Nazarious-ucu/travel-planner-api/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	return config.Config{
		CatalogPath:   "../../static/maharashtra_cities.json",
		AccessLogPath: filepath.Join(dir, "access.log"),
		Server:        config.Server{Host: "localhost", Port: "0", ReadTimeout: 10},
		DB: config.Db{
			Dialect:        DialectSqlite,
			Source:         filepath.Join(dir, "users.db"),
			MigrationsPath: "../../migrations/sqlite",
		},
		Session: config.Session{
			Backend:       config.SessionBackendMemory,
			CookieName:    "travel_session",
			TTLMinutes:    60,
			PurgeSchedule: "@every 1m",
		},
	}
}

func initApp(t *testing.T, cfg config.Config) ServiceContainer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sc, err := New(cfg, zerolog.New(io.Discard)).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sc.closeLog()
		_ = sc.Db.Close()
		if sc.Redis != nil {
			_ = sc.Redis.Close()
		}
	})
	return sc
}

func do(r http.Handler, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "travel_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

var ada = url.Values{
	"firstName":         {"Ada"},
	"lastName":          {"Lovelace"},
	"email":             {"ada@example.com"},
	"password":          {"secret"},
	"travelPreferences": {"hills"},
}

func TestRegisterLoginDashboardFlow(t *testing.T) {
	sc := initApp(t, testConfig(t))
	r := sc.Router

	w := do(r, http.MethodPost, "/register", ada)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	registered := sessionCookie(t, w)

	w = do(r, http.MethodGet, "/dashboard", nil, registered)
	assert.JSONEq(t,
		`{"view":"dashboard","username":"Ada","weather_data":null,"recommendations":null}`,
		w.Body.String())

	w = do(r, http.MethodPost, "/register", ada)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"view":"register","error":"Email already exists."}`, w.Body.String())

	w = do(r, http.MethodPost, "/login", url.Values{"username": {"ada@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"view":"login","error":"Invalid email or password."}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())

	w = do(r, http.MethodPost, "/login", url.Values{"username": {"ADA@example.com"}, "password": {"secret"}})
	assert.JSONEq(t, `{"view":"login","error":"Invalid email or password."}`, w.Body.String())

	w = do(r, http.MethodPost, "/login", url.Values{"username": {"ada@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	loggedIn := sessionCookie(t, w)
	assert.NotEqual(t, registered.Value, loggedIn.Value)

	w = do(r, http.MethodPost, "/dashboard", url.Values{"budget": {"500"}}, loggedIn)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"view":"dashboard",
		"username":"Ada",
		"weather_data":null,
		"recommendations":[
			{"city":"Pune","temperature":28,"humidity":55,"wind_speed":9,"packages":{"Basic":500}},
			{"city":"Kolhapur","temperature":"N/A","humidity":65,"wind_speed":"N/A","packages":{"Basic":450}}
		]}`, w.Body.String())
	assert.True(t, strings.Index(w.Body.String(), "Pune") < strings.Index(w.Body.String(), "Kolhapur"))
}

func TestStaticRoutes(t *testing.T) {
	sc := initApp(t, testConfig(t))

	for path, want := range map[string]string{
		"/":         `{"view":"index"}`,
		"/service":  `{"view":"service"}`,
		"/about":    `{"view":"about"}`,
		"/login":    `{"view":"login"}`,
		"/register": `{"view":"register"}`,
	} {
		w := do(sc.Router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, want, w.Body.String(), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	sc := initApp(t, testConfig(t))

	do(sc.Router, http.MethodPost, "/dashboard", url.Values{"budget": {"1000"}})
	w := do(sc.Router, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "travel_planner_recommendations_total 1")
	assert.Contains(t, w.Body.String(), "travel_planner_catalog_cities 8")
}

func TestInit_MissingCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogPath = filepath.Join(t.TempDir(), "absent.json")

	_, err := New(cfg, zerolog.New(io.Discard)).Init(context.Background())

	require.ErrorIs(t, err, catalog.ErrDataFileMissing)
}

// openHandles counts descriptors of this process that point at path.
func openHandles(t *testing.T, path string) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("descriptor listing not available")
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	n := 0
	for _, e := range entries {
		target, err := os.Readlink(filepath.Join("/proc/self/fd", e.Name()))
		if err == nil && target == path {
			n++
		}
	}
	return n
}

func TestInit_UnknownSessionBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Backend = "cookie"

	_, err := New(cfg, zerolog.New(io.Discard)).Init(context.Background())

	assert.ErrorContains(t, err, "unknown session backend")
	assert.Zero(t, openHandles(t, cfg.AccessLogPath), "access log left open")
}

func TestInit_RedisUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host, port, _ := strings.Cut(srv.Addr(), ":")
	srv.Close()

	cfg := testConfig(t)
	cfg.Session.Backend = config.SessionBackendRedis
	cfg.Redis = config.Redis{Host: host, Port: port}

	_, err := New(cfg, zerolog.New(io.Discard)).Init(context.Background())

	assert.ErrorContains(t, err, "connect to redis")
	assert.Zero(t, openHandles(t, cfg.AccessLogPath), "access log left open")
}

func TestInit_RedisSessions(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Session.Backend = config.SessionBackendRedis
	host, port, _ := strings.Cut(srv.Addr(), ":")
	cfg.Redis = config.Redis{Host: host, Port: port}

	sc := initApp(t, cfg)
	require.Nil(t, sc.Purger)

	w := do(sc.Router, http.MethodPost, "/register", ada)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookie := sessionCookie(t, w)
	assert.True(t, srv.Exists("session:"+cookie.Value))

	w = do(sc.Router, http.MethodGet, "/dashboard", nil, cookie)
	assert.JSONEq(t,
		`{"view":"dashboard","username":"Ada","weather_data":null,"recommendations":null}`,
		w.Body.String())
}

func TestCreateDb_UnsupportedDialect(t *testing.T) {
	_, err := CreateDb(context.Background(), "postgres", "travel")
	assert.Error(t, err)

	_, err = CreateDb(context.Background(), DialectSqlite, "")
	assert.Error(t, err)
}
