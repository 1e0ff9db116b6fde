package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Backend
	APIURL      string
	MetadataURL string

	// Metadata provider
	RequestTimeout    time.Duration // Per-attempt timeout for search and details (default: 10s)
	SearchDebounce    time.Duration // Quiet period before a search is dispatched (default: 300ms)
	DetailsAttempts   int           // Attempts for a details fetch, 1 means no retry
	DetailsRetryDelay time.Duration
	ProviderRateLimit float64 // Requests per second
	ProviderCacheTTL  time.Duration

	// Store
	RefreshDelay    time.Duration // Wait between an acknowledged mutation and its refresh pair
	RefreshSchedule string        // Cron spec for background silent refresh

	// View
	PageSize        int
	SortBy          string
	CollationLocale string

	// Notifications
	NotificationTTL time.Duration

	// Server
	ServerPort       string
	TraceSampleRatio float64

	// Paths
	DatabaseFile string // $CONFIG_DIR/cinematheque.db

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Missing .env is fine, the environment may carry everything
	_ = viper.ReadInConfig()

	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("SEARCH_DEBOUNCE", "300ms")
	viper.SetDefault("DETAILS_ATTEMPTS", 1)
	viper.SetDefault("DETAILS_RETRY_DELAY", "1s")
	viper.SetDefault("PROVIDER_RATE_LIMIT", 4.0)
	viper.SetDefault("PROVIDER_CACHE_TTL", "10m")
	viper.SetDefault("REFRESH_DELAY", "300ms")
	viper.SetDefault("REFRESH_SCHEDULE", "*/5 * * * *")
	viper.SetDefault("PAGE_SIZE", 20)
	viper.SetDefault("SORT_BY", "date_added")
	viper.SetDefault("COLLATION_LOCALE", "en")
	viper.SetDefault("NOTIFICATION_TTL", "3s")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TRACE_SAMPLE_RATIO", 1.0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "cinematheque")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	apiURL := strings.TrimRight(viper.GetString("API_URL"), "/")
	metadataURL := strings.TrimRight(viper.GetString("METADATA_URL"), "/")
	if metadataURL == "" && apiURL != "" {
		metadataURL = apiURL + "/tmdb"
	}

	config := &Config{
		APIURL:      apiURL,
		MetadataURL: metadataURL,

		RequestTimeout:    viper.GetDuration("REQUEST_TIMEOUT"),
		SearchDebounce:    viper.GetDuration("SEARCH_DEBOUNCE"),
		DetailsAttempts:   viper.GetInt("DETAILS_ATTEMPTS"),
		DetailsRetryDelay: viper.GetDuration("DETAILS_RETRY_DELAY"),
		ProviderRateLimit: viper.GetFloat64("PROVIDER_RATE_LIMIT"),
		ProviderCacheTTL:  viper.GetDuration("PROVIDER_CACHE_TTL"),

		RefreshDelay:    viper.GetDuration("REFRESH_DELAY"),
		RefreshSchedule: viper.GetString("REFRESH_SCHEDULE"),

		PageSize:        viper.GetInt("PAGE_SIZE"),
		SortBy:          viper.GetString("SORT_BY"),
		CollationLocale: viper.GetString("COLLATION_LOCALE"),

		NotificationTTL: viper.GetDuration("NOTIFICATION_TTL"),

		ServerPort:       viper.GetString("SERVER_PORT"),
		TraceSampleRatio: viper.GetFloat64("TRACE_SAMPLE_RATIO"),

		DatabaseFile: filepath.Join(configDir, "cinematheque.db"),

		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if c.DetailsAttempts < 1 {
		return fmt.Errorf("DETAILS_ATTEMPTS must be at least 1, got %d", c.DetailsAttempts)
	}
	switch c.PageSize {
	case 20, 50, 100:
	default:
		return fmt.Errorf("PAGE_SIZE must be one of 20, 50, 100, got %d", c.PageSize)
	}
	switch c.SortBy {
	case "title", "size", "date_added":
	default:
		return fmt.Errorf("SORT_BY must be one of title, size, date_added, got %q", c.SortBy)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
