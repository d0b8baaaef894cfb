package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	CorsAllowedOrigins []string
	LogLevel           string

	CMSGraphQLURL      string
	CMSTimeout         time.Duration
	CMSPageSize        int
	CMSMaxRetries      int
	TechnologyCategory string
	CommunityCategory  string

	RevalidateInterval time.Duration
	RevalidateToken    string
	CommunityCacheTTL  time.Duration

	PublicRateLimit  int
	PublicRateWindow time.Duration

	SiteConfigPath string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CMSGraphQLURL:      getEnv("CMS_GRAPHQL_URL", ""),
		CMSTimeout:         getEnvDuration("CMS_TIMEOUT", 15*time.Second),
		CMSPageSize:        getEnvInt("CMS_PAGE_SIZE", 100),
		CMSMaxRetries:      getEnvInt("CMS_MAX_RETRIES", 3),
		TechnologyCategory: getEnv("CMS_TECHNOLOGY_CATEGORY", "technology"),
		CommunityCategory:  getEnv("CMS_COMMUNITY_CATEGORY", "community"),
		RevalidateInterval: getEnvDuration("REVALIDATE_INTERVAL", 30*time.Second),
		RevalidateToken:    getEnv("REVALIDATE_TOKEN", ""),
		CommunityCacheTTL:  getEnvDuration("COMMUNITY_CACHE_TTL", 30*time.Second),
		PublicRateLimit:    getEnvInt("PUBLIC_RATE_LIMIT", 30),
		PublicRateWindow:   getEnvDuration("PUBLIC_RATE_WINDOW", time.Minute),
		SiteConfigPath:     getEnv("SITE_CONFIG", ""),
		ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.CMSGraphQLURL == "" {
		errs = append(errs, errors.New("CMS_GRAPHQL_URL is required"))
	}
	if c.CMSPageSize < 1 || c.CMSPageSize > 100 {
		errs = append(errs, fmt.Errorf("CMS_PAGE_SIZE must be between 1 and 100, got %d", c.CMSPageSize))
	}
	if c.RevalidateInterval <= 0 {
		errs = append(errs, errors.New("REVALIDATE_INTERVAL must be positive"))
	}
	if c.PublicRateLimit < 1 {
		errs = append(errs, errors.New("PUBLIC_RATE_LIMIT must be at least 1"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	if value := getEnv(key, ""); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := getEnv(key, ""); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
