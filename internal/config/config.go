package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogMode     string `env:"LOG_MODE" envDefault:"dev"`

	// RedisAddr selects the redis cache backend when set; empty means the
	// in-process memory cache.
	RedisAddr string `env:"REDIS_ADDR"`

	JWTSecret string `env:"JWT_SECRET"`

	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`

	DBMaxOpenConns         int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns         int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime      time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime      time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
	SessionCookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"kl_session"`
	DefaultCatalogPageSize int           `env:"CATALOG_PAGE_SIZE" envDefault:"25"`
	MaxCatalogPageSize     int           `env:"CATALOG_PAGE_SIZE_MAX" envDefault:"100"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
