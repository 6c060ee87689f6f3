package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// Store selects the persistence backend: "postgres" or "memory".
	Store string

	JWTSecret     string
	JWTTTLMinutes int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins []string
	OTELEndpoint       string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	LoginRateLimit         int
	LoginRateWindowSeconds int

	QueryTimeoutSeconds int
	MaxBodyBytes        int64

	// LegacyCategoryRead lets any authenticated caller fetch a category by id.
	LegacyCategoryRead bool
}

func Load() Config {
	// a missing .env is fine, the process environment still applies
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	return Config{
		Env:                    getEnv("APP_ENV", "dev"),
		Port:                   getEnvInt("PORT", 8080),
		DBURL:                  getEnv("DATABASE_URL", buildDBURL()),
		Store:                  getEnv("STORE", "postgres"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTTTLMinutes:          getEnvInt("JWT_TTL_MINUTES", 24*60),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		OTELEndpoint:           getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		AdminEmail:             getEnv("ADMIN_EMAIL", ""),
		AdminPassword:          getEnv("ADMIN_PASSWORD", ""),
		AdminName:              getEnv("ADMIN_NAME", "admin"),
		LoginRateLimit:         getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindowSeconds: getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60),
		QueryTimeoutSeconds:    getEnvInt("QUERY_TIMEOUT_SECONDS", 3),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		LegacyCategoryRead:     getEnvBool("LEGACY_CATEGORY_READ", false),
	}
}

func (c Config) Validate() error {
	if c.JWTSecret == "" && c.Env != "dev" {
		return errors.New("JWT_SECRET is required outside dev")
	}
	if c.Store != "postgres" && c.Store != "memory" {
		return errors.New("STORE must be postgres or memory")
	}
	if c.JWTTTLMinutes <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	return nil
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c Config) QueryTimeout() time.Duration {
	if c.QueryTimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

func (c Config) LoginRateWindow() time.Duration {
	return time.Duration(c.LoginRateWindowSeconds) * time.Second
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "finanzcord")
	pass := getEnv("DB_PASSWORD", "finanzcord")
	name := getEnv("DB_NAME", "finanzcord")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a store call while keeping the request's values and span.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	num, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", v)
		return fallback
	}

	return num
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
