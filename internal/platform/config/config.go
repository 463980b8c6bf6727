package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transition policies accepted by KYC_TRANSITION_POLICY.
const (
	TransitionPolicyPermissive  = "permissive"
	TransitionPolicyReviewGraph = "review_graph"
)

// DevSigningKey signs sessions when JWT_SIGNING_KEY is unset. The server
// refuses to start with it in production.
const DevSigningKey = "dev-secret-key-change-in-production"

// Server captures process level configuration.
type Server struct {
	Addr        string
	Environment string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	RedisURL        string
	KafkaBrokers    []string
	KafkaAuditTopic string

	JWTSigningKey string
	SessionTTL    time.Duration

	KYCTransitionPolicy string
	AnalyticsCacheTTL   time.Duration
	DownloadWindow      time.Duration

	RateLimitEnabled bool
	RateLimitPublic  int
	RateLimitAPI     int
	RateLimitWindow  time.Duration

	CORSAllowedOrigins []string
	TrustedProxies     []string
	RequestTimeout     time.Duration
	MaxBodyBytes       int64
	LogLevel           string
	LogFormat          string
}

// HasDatabase reports whether Postgres-backed stores should be used.
func (s Server) HasDatabase() bool { return s.DatabaseURL != "" }

// IsProduction reports whether the process runs in production.
func (s Server) IsProduction() bool { return s.Environment == "production" }

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on process environment")
	}

	return Server{
		Addr:        getEnv("PAAM_ADDR", ":8080"),
		Environment: getEnv("PAAM_ENV", "development"),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLife:   getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaAuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "paam.kyc.events"),

		JWTSigningKey: getEnv("JWT_SIGNING_KEY", DevSigningKey),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),

		KYCTransitionPolicy: getEnv("KYC_TRANSITION_POLICY", TransitionPolicyPermissive),
		AnalyticsCacheTTL:   getDuration("ANALYTICS_CACHE_TTL", 5*time.Minute),
		DownloadWindow:      getDuration("DOWNLOAD_DEFAULT_WINDOW", 30*24*time.Hour),

		RateLimitEnabled: getEnv("RATE_LIMIT_ENABLED", "true") != "false",
		RateLimitPublic:  getInt("RATE_LIMIT_PUBLIC", 120),
		RateLimitAPI:     getInt("RATE_LIMIT_API", 600),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", time.Minute),

		CORSAllowedOrigins: getListDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getList("TRUSTED_PROXIES"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBodyBytes:       int64(getInt("MAX_BODY_BYTES", 1<<20)),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getListDefault(key string, fallback []string) []string {
	if out := getList(key); len(out) > 0 {
		return out
	}
	return fallback
}
