package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env         string
	HTTPAddr    string
	APIV1Prefix string
	LogLevel    string

	DatabaseDriver     string
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	RedisURL           string
	SessionKeyPrefix   string
	RateLimitKeyPrefix string

	TokenSecretKey  string
	TokenAlgorithm  string
	TokenIssuer     string
	TokenAudience   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TokenClockSkew  time.Duration
	BcryptCost      int

	AuthRateLimitRPM int
	APIRateLimitRPM  int
	CORSOrigins      []string

	ShutdownTimeout  time.Duration
	ReadinessTimeout time.Duration

	FirstSuperuserName     string
	FirstSuperuserEmail    string
	FirstSuperuserPassword string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
	OTELHTTPEnabled           bool
}

// Load reads configuration from the process environment. Call LoadEnvFile
// first to seed the environment from a .env file.
func Load() (*Config, error) {
	cfg, err := load()
	profile := os.Getenv("APP_ENV")
	if err != nil {
		recordConfigValidationEvent(context.Background(), profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(context.Background(), profile, "success", "none")
	return cfg, nil
}

func load() (*Config, error) {
	p := &envParser{}
	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		APIV1Prefix: getEnv("API_V1_PREFIX", "/api/v1"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseDriver:     strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:     p.int("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:     p.int("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime:  p.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		RedisURL:           os.Getenv("REDIS_URL"),
		SessionKeyPrefix:   getEnv("SESSION_KEY_PREFIX", "refresh_token"),
		RateLimitKeyPrefix: getEnv("RATE_LIMIT_KEY_PREFIX", "rl"),

		TokenSecretKey:  os.Getenv("TOKEN_SECRET_KEY"),
		TokenAlgorithm:  strings.ToUpper(getEnv("TOKEN_ALGORITHM", "HS256")),
		TokenIssuer:     getEnv("TOKEN_ISSUER", "projex-server"),
		TokenAudience:   getEnv("TOKEN_AUDIENCE", "projex-app"),
		AccessTokenTTL:  p.duration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: p.duration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		TokenClockSkew:  p.duration("TOKEN_CLOCK_SKEW", 30*time.Second),
		BcryptCost:      p.int("BCRYPT_COST", 12),

		AuthRateLimitRPM: p.int("AUTH_RATE_LIMIT_RPM", 30),
		APIRateLimitRPM:  p.int("API_RATE_LIMIT_RPM", 600),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		ShutdownTimeout:  p.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		ReadinessTimeout: p.duration("READINESS_TIMEOUT", 2*time.Second),

		FirstSuperuserName:     getEnv("FIRST_SUPERUSER_NAME", "Administrator"),
		FirstSuperuserEmail:    getEnv("FIRST_SUPERUSER_EMAIL", "admin@projex.com"),
		FirstSuperuserPassword: os.Getenv("FIRST_SUPERUSER_PASSWORD"),

		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "projex-server"),
		OTELEnvironment:           getEnv("OTEL_ENVIRONMENT", "development"),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  p.bool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELMetricsEnabled:        p.bool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:        p.bool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:           p.bool("OTEL_LOGS_ENABLED", false),
		OTELMetricsExportInterval: p.duration("OTEL_METRICS_EXPORT_INTERVAL", 15*time.Second),
		OTELHTTPEnabled:           p.bool("OTEL_HTTP_ENABLED", false),
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver))
	}
	if c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}
	if len(c.TokenSecretKey) < 32 {
		errs = append(errs, errors.New("TOKEN_SECRET_KEY must be at least 32 bytes"))
	}
	switch c.TokenAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("TOKEN_ALGORITHM %q is not supported", c.TokenAlgorithm))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token ttls must be positive"))
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL"))
	}
	if c.TokenClockSkew < 0 {
		errs = append(errs, errors.New("TOKEN_CLOCK_SKEW must not be negative"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, errors.New("BCRYPT_COST must be between 4 and 31"))
	}
	if c.AuthRateLimitRPM <= 0 || c.APIRateLimitRPM <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if !strings.HasPrefix(c.APIV1Prefix, "/") {
		errs = append(errs, errors.New("API_V1_PREFIX must start with /"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

type envParser struct {
	errs []error
}

func (p *envParser) int(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("parse %s: %w", key, err))
		return def
	}
	return v
}

func (p *envParser) bool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("parse %s: %w", key, err))
		return def
	}
	return v
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("parse %s: %w", key, err))
		return def
	}
	return v
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
