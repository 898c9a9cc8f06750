package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
)

const (
	DefaultAvatarURL = "https://i.pravatar.cc/150"
	defaultTokenTTL  = 7 * 24 * time.Hour
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Config holds application configuration loaded from environment variables
type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string

	DBDriver          string
	DatabaseURL       string
	DBCreateIfMissing bool

	JWTSecret    string
	JWTExpiresIn time.Duration

	StorageDriver       string
	UploadDir           string
	PublicBaseURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	RedisURL string

	SessionSecret        string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleCallbackURL    string
	FacebookClientID     string
	FacebookClientSecret string
	FacebookCallbackURL  string

	AllowedOrigins   []string
	DefaultAvatarURL string
}

// LoadDotEnv loads a .env file when present. A missing file is not an error.
func LoadDotEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port := getEnvWithDefault("PORT", "5001")

	cfg := &Config{
		Env:                  getEnvWithDefault("ENV", "development"),
		Port:                 port,
		LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvWithDefault("LOG_FORMAT", "text"),
		DBDriver:             strings.ToLower(getEnvWithDefault("DB_DRIVER", "postgres")),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		StorageDriver:        strings.ToLower(getEnvWithDefault("STORAGE_DRIVER", StorageLocal)),
		UploadDir:            getEnvWithDefault("UPLOAD_DIR", "uploads"),
		PublicBaseURL:        strings.TrimRight(getEnvWithDefault("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		CloudinaryCloudName:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		RedisURL:             os.Getenv("REDIS_URL"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:    getEnvWithDefault("GOOGLE_CALLBACK_URL", oauthCallback(port, "google")),
		FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
		FacebookCallbackURL:  getEnvWithDefault("FACEBOOK_CALLBACK_URL", oauthCallback(port, "facebook")),
		AllowedOrigins:       parseOrigins(os.Getenv("CLIENT_URL"), os.Getenv("ALLOWED_ORIGINS")),
		DefaultAvatarURL:     getEnvWithDefault("DEFAULT_AVATAR_URL", DefaultAvatarURL),
	}

	var err error

	cfg.DBCreateIfMissing, err = parseBool("DB_CREATE_IF_MISSING", false)

	if err != nil {
		return nil, err
	}

	cfg.JWTExpiresIn, err = ParseDuration(getEnvWithDefault("JWT_EXPIRES_IN", "7d"))

	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}

	switch c.DBDriver {
	case "postgres", "mysql":
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", c.DBDriver))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	switch c.StorageDriver {
	case StorageCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for STORAGE_DRIVER=cloudinary"))
		}
	case StorageLocal:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) FacebookEnabled() bool {
	return c.FacebookClientID != "" && c.FacebookClientSecret != ""
}

// ParseDuration accepts Go durations ("12h") and whole days ("7d").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)

		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", value)
		}

		return time.Duration(n) * 24 * time.Hour, nil
	}

	if value == "" {
		return defaultTokenTTL, nil
	}

	return time.ParseDuration(value)
}

func parseOrigins(clientURL, allowed string) []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(allowed, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}

func parseBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)

	if raw == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseBool(raw)

	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}

	return v, nil
}

func oauthCallback(port, provider string) string {
	base := strings.TrimRight(getEnvWithDefault("PUBLIC_BASE_URL", "http://localhost:"+port), "/")
	return base + "/api/v1/auth/oauth/" + provider + "/callback"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
