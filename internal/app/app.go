package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	_ "github.com/Nazarious-ucu/travel-planner-api/docs"
	"github.com/Nazarious-ucu/travel-planner-api/internal/catalog"
	"github.com/Nazarious-ucu/travel-planner-api/internal/config"
	authHandler "github.com/Nazarious-ucu/travel-planner-api/internal/handlers/auth"
	"github.com/Nazarious-ucu/travel-planner-api/internal/handlers/dashboard"
	"github.com/Nazarious-ucu/travel-planner-api/internal/handlers/pages"
	"github.com/Nazarious-ucu/travel-planner-api/internal/metrics"
	"github.com/Nazarious-ucu/travel-planner-api/internal/repository"
	"github.com/Nazarious-ucu/travel-planner-api/internal/services/auth"
	"github.com/Nazarious-ucu/travel-planner-api/internal/services/logger"
	"github.com/Nazarious-ucu/travel-planner-api/internal/services/recommendation"
	"github.com/Nazarious-ucu/travel-planner-api/internal/session"
	pkgLogger "github.com/Nazarious-ucu/travel-planner-api/pkg/logger"
)

const (
	timeoutDuration = 5 * time.Second

	metricsNamespace = "travel_planner"

	DialectSqlite = "sqlite"
	DialectMysql  = "mysql"
)

type ServiceContainer struct {
	Catalog         *catalog.Catalog
	Recommendations *recommendation.Service
	Auth            *auth.Service
	Users           *repository.UserRepository
	SessionStore    session.Store
	Sessions        *session.Manager
	Purger          *session.Purger

	Router     *gin.Engine
	Srv        *http.Server
	Db         *sql.DB
	Redis      *redis.Client
	fileLogger *zap.Logger
	closeLog   func() error
	M          *metrics.Metrics
}

type App struct {
	cfg config.Config
	l   zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *App {
	logger = logger.With().Str("service", "travel-planner").Timestamp().Logger()
	return &App{cfg: cfg, l: logger}
}

func (a *App) Start(ctx context.Context) error {
	srvContainer, err := a.Init(ctx)
	if err != nil {
		return err
	}

	if srvContainer.Purger != nil {
		srvContainer.Purger.Start()
	}

	serveErr := make(chan error, 1)
	go func() {
		a.l.Info().Str("http_addr", a.cfg.ServerAddress()).Msg("HTTP server listening")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			a.l.Error().Err(err).Msg("HTTP server error")
			_ = a.Stop(srvContainer)
			return err
		}
	}

	return a.Stop(srvContainer)
}

func (a *App) Stop(srvContainer ServiceContainer) error {
	a.l.Info().Msg("Stopping application")

	ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
	defer cancel()
	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		a.l.Error().Err(err).Msg("HTTP shutdown error")
	} else {
		a.l.Info().Msg("HTTP server stopped")
	}

	if srvContainer.Purger != nil {
		srvContainer.Purger.Stop()
	}

	if srvContainer.Redis != nil {
		if err := srvContainer.Redis.Close(); err != nil {
			a.l.Error().Err(err).Msg("Redis close error")
		}
	}

	if err := srvContainer.Db.Close(); err != nil {
		a.l.Error().Err(err).Msg("Database close error")
	} else {
		a.l.Info().Msg("Database closed")
	}

	a.closeAccessLog(srvContainer)

	a.l.Info().Msg("Application shutdown complete")
	return nil
}

// Init builds every component. A missing or malformed catalog, an unreachable
// database or a failed migration is returned as an error and the service must not start.
func (a *App) Init(ctx context.Context) (ServiceContainer, error) {
	a.l.Info().
		Str("catalog", a.cfg.CatalogPath).
		Str("db_dialect", a.cfg.DB.Dialect).
		Str("session_backend", a.cfg.Session.Backend).
		Msg("Initializing application")

	cat, err := catalog.Load(a.cfg.CatalogPath)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("load catalog: %w", err)
	}
	a.l.Info().Int("cities", cat.Len()).Msg("Catalog loaded")

	dbCtx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()
	db, err := CreateDb(dbCtx, a.cfg.DB.Dialect, a.cfg.DB.Source)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("open database: %w", err)
	}
	if err := InitDb(db, a.cfg.DB.Dialect, a.cfg.DB.MigrationsPath); err != nil {
		_ = db.Close()
		return ServiceContainer{}, fmt.Errorf("migrate database: %w", err)
	}

	m := metrics.NewMetrics(metricsNamespace, db, a.cfg.DB.Dialect)
	m.CatalogCities.Set(float64(cat.Len()))

	fileLogger, closeLog, err := pkgLogger.NewFileLogger(a.cfg.AccessLogPath)
	if err != nil {
		_ = db.Close()
		return ServiceContainer{}, fmt.Errorf("create access log: %w", err)
	}

	sc := ServiceContainer{
		Catalog:    cat,
		Db:         db,
		fileLogger: fileLogger,
		closeLog:   closeLog,
		M:          m,
	}

	if err := a.initSessions(ctx, &sc); err != nil {
		a.closeAccessLog(sc)
		_ = db.Close()
		return ServiceContainer{}, err
	}

	sc.Users = repository.NewUserRepository(db, a.l, m)
	sc.Auth = auth.NewService(sc.Users, a.l, m)
	sc.Recommendations = recommendation.NewService(cat, a.l, m)
	sc.Sessions = session.NewManager(
		sc.SessionStore,
		a.cfg.Session.CookieName,
		a.cfg.Session.TTL(),
		a.cfg.Session.SecureCookie,
		a.l,
	)

	sc.Router = a.routes(sc)
	sc.Srv = &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     sc.Router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	return sc, nil
}

func (a *App) closeAccessLog(sc ServiceContainer) {
	if err := sc.fileLogger.Sync(); err != nil {
		a.l.Warn().Err(err).Msg("failed to sync access log")
	}
	if err := sc.closeLog(); err != nil {
		a.l.Warn().Err(err).Msg("failed to close access log")
	}
}

func (a *App) initSessions(ctx context.Context, sc *ServiceContainer) error {
	ttl := a.cfg.Session.TTL()

	switch a.cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Address(),
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, timeoutDuration)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("connect to redis: %w", err)
		}
		sc.Redis = rdb
		sc.SessionStore = session.NewMetricsDecorator(session.NewRedisStore(rdb, a.l, ttl), sc.M)
		a.l.Info().Str("redis_addr", a.cfg.Redis.Address()).Msg("Redis session store configured")

	case config.SessionBackendMemory:
		store := session.NewMemoryStore(ttl)
		purger, err := session.NewPurger(store, a.cfg.Session.PurgeSchedule, a.l, sc.M)
		if err != nil {
			return fmt.Errorf("schedule session purge: %w", err)
		}
		sc.SessionStore = session.NewMetricsDecorator(store, sc.M)
		sc.Purger = purger
		a.l.Info().Str("schedule", a.cfg.Session.PurgeSchedule).Msg("In-memory session store configured")

	default:
		return fmt.Errorf("unknown session backend %q", a.cfg.Session.Backend)
	}

	return nil
}

func (a *App) routes(sc ServiceContainer) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		sc.M.HTTPMiddleware(),
		logger.NewAccessLog(sc.fileLogger).Middleware(),
		sc.Sessions.Middleware(),
	)

	pageHandler := pages.NewHandler()
	authH := authHandler.NewHandler(sc.Auth, sc.Sessions, a.l)
	dashboardHandler := dashboard.NewHandler(sc.Recommendations, a.l)

	router.GET("/", pageHandler.Index)
	router.GET("/service", pageHandler.Service)
	router.GET("/about", pageHandler.About)

	router.GET("/login", authH.LoginForm)
	router.POST("/login", authH.Login)
	router.GET("/register", authH.RegisterForm)
	router.POST("/register", authH.Register)

	router.GET("/dashboard", dashboardHandler.Show)
	router.POST("/dashboard", dashboardHandler.Recommend)

	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))
	router.GET("/metrics", gin.WrapH(sc.M.Handler()))

	return router
}

// CreateDb opens and pings the user store. For sqlite name is a file path,
// for mysql it is a DSN.
func CreateDb(ctx context.Context, dialect, name string) (*sql.DB, error) {
	if name == "" {
		return nil, errors.New("database name cannot be empty")
	}

	var connectionString string
	switch dialect {
	case DialectSqlite:
		connectionString = "file:" + name + "?cache=shared&mode=rwc"
	case DialectMysql:
		connectionString = name
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	db, err := sql.Open(dialect, connectionString)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func InitDb(db *sql.DB, dialect, migrationPath string) error {
	gooseDialect := dialect
	if dialect == DialectSqlite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	return goose.Up(db, migrationPath)
}
