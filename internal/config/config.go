package config

import (
	"fmt"
	"os"
	"time"

	pkgcfg "github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func Load() Config {
	return Config{
		ServiceName: pkgcfg.EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  pkgcfg.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		DatabaseURL: databaseURL(),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  pkgcfg.EnvDurationDefault("JWT_TTL_MINUTES", time.Minute, time.Hour),

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        pkgcfg.EnvIntDefault("REDIS_DB", 0),
		AuthRateLimit:  pkgcfg.EnvIntDefault("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: pkgcfg.EnvDurationDefault("AUTH_RATE_WINDOW_SECONDS", time.Second, time.Minute),
	}
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		host,
		pkgcfg.EnvDefault("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
	)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
