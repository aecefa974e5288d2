package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAdminEmail = "admin@ifter.com"

type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	AdminEmails     map[string]struct{}
	TodayZone       *time.Location
	Locate          LocateConfig
	GeocodeURL      string
	ExportInterval  time.Duration
	// ListingsRefresh bounds how stale an API instance's listing may get
	// when a change notification from a peer is missed.
	ListingsRefresh time.Duration
	S3              S3Config
	Logging         LoggingConfig
}

type LocateConfig struct {
	Endpoint string
	Timeout  time.Duration
	RPS      float64
}

type S3Config struct {
	Endpoint       string
	PublicEndpoint string
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
	UseSSL         bool
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	zoneName := getenv("TODAY_TZ", "UTC")
	zone, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("TODAY_TZ: %w", err)
	}

	cfg := &Config{
		Env:         getenv("APP_ENV", "dev"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminEmails: parseEmailSet(getenv("ADMIN_EMAILS", defaultAdminEmail)),
		TodayZone:   zone,
		Locate: LocateConfig{
			Endpoint: os.Getenv("LOCATE_ENDPOINT"),
			Timeout:  getenvDuration("LOCATE_TIMEOUT", 10*time.Second),
			RPS:      getenvFloat("LOCATE_RATE_RPS", 0),
		},
		GeocodeURL:      os.Getenv("GEOCODE_ENDPOINT"),
		ExportInterval:  getenvDuration("EXPORT_INTERVAL", 10*time.Minute),
		ListingsRefresh: getenvDuration("LISTINGS_REFRESH", time.Minute),
		S3: S3Config{
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			Bucket:         os.Getenv("S3_BUCKET"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getenv("S3_REGION", "us-east-1"),
			UseSSL:         getenvBool("S3_USE_SSL", true),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// S3Enabled reports whether map exports can be uploaded.
func (c *Config) S3Enabled() bool {
	return c.S3.Endpoint != "" && c.S3.Bucket != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func parseEmailSet(val string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.Split(val, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || !strings.Contains(part, "@") {
			continue
		}
		set[part] = struct{}{}
	}
	return set
}
