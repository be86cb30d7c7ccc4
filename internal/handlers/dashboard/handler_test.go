package dashboard_test

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/travel-planner-api/internal/handlers/dashboard"
	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
	"github.com/Nazarious-ucu/travel-planner-api/internal/session"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) Recommend(ctx context.Context, budget int) []models.Recommendation {
	return m.Called(ctx, budget).Get(0).([]models.Recommendation)
}

func price(v float64) *float64 { return &v }

var pune = models.Recommendation{
	City:        "Pune",
	Temperature: models.NewReading([]byte("28")),
	Humidity:    models.NewReading(nil),
	WindSpeed:   models.NewReading(nil),
	Packages:    models.Packages{{Tier: "Basic", Price: price(500)}},
}

func setupRouter(t *testing.T, svc *mockRecommender, store session.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := session.NewManager(store, "sid", time.Hour, false, zerolog.New(io.Discard))
	h := dashboard.NewHandler(svc, zerolog.New(io.Discard))

	r := gin.New()
	r.Use(sessions.Middleware())
	r.GET("/dashboard", h.Show)
	r.POST("/dashboard", h.Recommend)
	return r
}

func postBudget(r http.Handler, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/dashboard", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestShow_Guest(t *testing.T) {
	svc := &mockRecommender{}
	r := setupRouter(t, svc, session.NewMemoryStore(time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":null}`,
		w.Body.String())
	svc.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
}

func TestShow_LoggedIn(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	require.NoError(t, store.Save(context.Background(), "abc",
		models.SessionContext{UserID: "1", Username: "Ada"}))
	r := setupRouter(t, &mockRecommender{}, store)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.JSONEq(t,
		`{"view":"dashboard","username":"Ada","weather_data":null,"recommendations":null}`,
		w.Body.String())
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		name       string
		budget     []string
		wantBudget int
		result     []models.Recommendation
		wantBody   string
	}{
		{
			name:       "affordable cities",
			budget:     []string{"600"},
			wantBudget: 600,
			result:     []models.Recommendation{pune},
			wantBody: `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":[
				{"city":"Pune","temperature":28,"humidity":"N/A","wind_speed":"N/A","packages":{"Basic":500}}]}`,
		},
		{
			name:       "nothing affordable",
			budget:     []string{"0"},
			wantBudget: 0,
			result:     []models.Recommendation{},
			wantBody:   `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":[]}`,
		},
		{
			name:       "surrounding whitespace",
			budget:     []string{" 600 "},
			wantBudget: 600,
			result:     []models.Recommendation{},
			wantBody:   `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":[]}`,
		},
		{
			name:       "budget beyond int range",
			budget:     []string{"99999999999999999999"},
			wantBudget: math.MaxInt,
			result:     []models.Recommendation{pune},
			wantBody: `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":[
				{"city":"Pune","temperature":28,"humidity":"N/A","wind_speed":"N/A","packages":{"Basic":500}}]}`,
		},
		{
			name:   "negative budget beyond int range",
			budget: []string{"-99999999999999999999"},
			wantBody: `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":null,
				"error":"Budget cannot be negative."}`,
		},
		{
			name:     "missing budget",
			wantBody: `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":null}`,
		},
		{
			name:     "not an integer",
			budget:   []string{"12.5"},
			wantBody: `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":null}`,
		},
		{
			name:   "negative budget",
			budget: []string{"-1"},
			wantBody: `{"view":"dashboard","username":"Guest","weather_data":null,"recommendations":null,
				"error":"Budget cannot be negative."}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRecommender{}
			if tc.result != nil {
				svc.On("Recommend", mock.Anything, tc.wantBudget).Return(tc.result)
			}
			r := setupRouter(t, svc, session.NewMemoryStore(time.Hour))

			form := url.Values{}
			if tc.budget != nil {
				form["budget"] = tc.budget
			}
			w := postBudget(r, form, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
			svc.AssertExpectations(t)
			if tc.result == nil {
				svc.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
			}
		})
	}
}
