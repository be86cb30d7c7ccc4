package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:"localhost"`
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type Db struct {
	Dialect        string `envconfig:"DB_DIALECT" default:"sqlite"`
	Source         string `envconfig:"DB_NAME" default:"travel_planner.db"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_DIR" default:"./migrations/sqlite"`
}

type Redis struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
}

type Session struct {
	Backend       string `envconfig:"SESSION_BACKEND" default:"memory"`
	CookieName    string `envconfig:"SESSION_COOKIE" default:"travel_session"`
	TTLMinutes    int    `envconfig:"SESSION_TTL_MINUTES" default:"60"`
	PurgeSchedule string `envconfig:"SESSION_PURGE_SCHEDULE" default:"*/5 * * * *"`
	SecureCookie  bool   `envconfig:"SESSION_SECURE_COOKIE" default:"false"`
}

type Config struct {
	CatalogPath   string `envconfig:"CATALOG_PATH" default:"./static/maharashtra_cities.json"`
	LogsPath      string `envconfig:"LOGS_PATH" default:"logs/travel-planner.log"`
	AccessLogPath string `envconfig:"ACCESS_LOG_PATH" default:"logs/access.log"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`

	Server  Server
	DB      Db
	Redis   Redis
	Session Session
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (r *Redis) Address() string {
	return r.Host + ":" + r.Port
}

func (s *Session) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}
