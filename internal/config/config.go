package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DBURL         string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AccessTokenSecret string
	JWTSecret         string
	JWTExpiresIn      string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	FilterSuppliesLimit   int
	FilterVolunteersLimit int

	// AdminPromotionOpen leaves PATCH /users/admin/:id without bearer/admin checks.
	AdminPromotionOpen bool

	AdminEmail    string
	AdminPassword string
	AdminName     string

	OTelEndpoint    string
	OTelServiceName string
}

func Load() Config {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 5000),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "assignment"),
		DBURL:         buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiresIn:      getEnv("EXPIRES_IN", "1d"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 100<<10)),

		FilterSuppliesLimit:   getEnvInt("FILTER_SUPPLIES_LIMIT", 8),
		FilterVolunteersLimit: getEnvInt("FILTER_VOLUNTEERS_LIMIT", 4),

		AdminPromotionOpen: getEnvBool("ADMIN_PROMOTION_OPEN", false),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "reliefhub-api"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	return nil
}

// LocalCache reports whether aggregates may be cached in process memory.
// That is only safe when this process also owns the data, so shared stores
// without redis run uncached.
func (c Config) LocalCache() bool {
	return c.RedisAddr == "" && c.StoreDriver == StoreMemory
}

// LoginSecret is the key used for tokens minted by /api/v1/login.
func (c Config) LoginSecret() string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}

	return c.AccessTokenSecret
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "reliefhub")
	pass := getEnv("DB_PASSWORD", "reliefhub")
	name := getEnv("DB_NAME", "reliefhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}
	return fallback
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
