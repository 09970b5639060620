package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	JWTSecret        string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	CORSOrigins      []string
	RateLimitPerMin  int

	StorageDriver   string
	StoragePath     string
	StorageBaseURL  string
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	S3PublicBaseURL string

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisTLS      bool
	JobTTL        time.Duration

	OpenAIBaseURL    string
	FireworksBaseURL string
	StabilityBaseURL string
	IdeogramBaseURL  string
	ReplicateBaseURL string
	DIDBaseURL       string
	RunwayBaseURL    string
	ProviderTimeout  time.Duration
	PromptModel      string
	OpenAIOrg        string

	PollMaxAttempts int
	PollInterval    time.Duration

	GeoIPDBPath           string
	DefaultLocale         string
	MaxReferenceDimension int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", "filesystem")),
		StoragePath:     getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Prefix:        os.Getenv("S3_PREFIX"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisTLS:      getEnvBool("REDIS_TLS", false),
		JobTTL:        getEnvDuration("VIDEO_JOB_TTL", 24*time.Hour),

		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		FireworksBaseURL: getEnv("FIREWORKS_BASE_URL", "https://api.fireworks.ai/inference/v1"),
		StabilityBaseURL: getEnv("STABILITY_BASE_URL", "https://api.stability.ai"),
		IdeogramBaseURL:  getEnv("IDEOGRAM_BASE_URL", "https://api.ideogram.ai"),
		ReplicateBaseURL: getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		DIDBaseURL:       getEnv("DID_BASE_URL", "https://api.d-id.com"),
		RunwayBaseURL:    getEnv("RUNWAY_BASE_URL", "https://api.dev.runwayml.com"),
		ProviderTimeout:  getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		PromptModel:      getEnv("PROMPT_MODEL", "gpt-4o-mini"),
		OpenAIOrg:        os.Getenv("OPENAI_ORGANIZATION"),

		PollMaxAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 24),
		PollInterval:    getEnvDuration("POLL_INTERVAL", 5*time.Second),

		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:         getEnv("DEFAULT_LOCALE", "en"),
		MaxReferenceDimension: getEnvInt("MAX_REFERENCE_DIMENSION", 1024),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.StorageDriver {
	case "filesystem":
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return fallback
}
