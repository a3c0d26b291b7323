package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default archive endpoints (Stadsarchief Amsterdam)
const (
	DefaultBaseURL          = "https://archief.amsterdam"
	DefaultDownloadInfoURL  = "https://archief.amsterdam/api/download_info/0/"
	DefaultQueueDownloadURL = "https://archief.amsterdam/api/queue_download/0/"
	DefaultUserAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/35.0.1916.47 Safari/537.36"
)

// Storage backends
const (
	StoreFilesystem = "fs"
	StoreBlob       = "blob"
)

// Config holds all configuration options for saafetch
type Config struct {
	// Archive endpoints and request headers
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Transport retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ArchiveConfig holds the archive endpoints
type ArchiveConfig struct {
	BaseURL          string            `yaml:"base_url" json:"base_url"`
	DownloadInfoURL  string            `yaml:"download_info_url" json:"download_info_url"`
	QueueDownloadURL string            `yaml:"queue_download_url" json:"queue_download_url"`
	UserAgent        string            `yaml:"user_agent" json:"user_agent"`
	Headers          map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// RateLimitConfig holds rate limiting configuration.
// RequestsPerMinute of 0 disables client-side throttling.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration for transient transport failures
type RetryConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	// BaseDirectory is the destination of range downloads
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	// ListingRoot is the directory under which listing groups are created
	ListingRoot string `yaml:"listing_root" json:"listing_root"`
	// Store selects the artifact backend: "fs" or "blob"
	Store string `yaml:"store" json:"store"`
	// BucketURL is the gocloud.dev bucket URL used by the blob store
	BucketURL    string `yaml:"bucket_url" json:"bucket_url"`
	SkipExisting bool   `yaml:"skip_existing" json:"skip_existing"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	// ConcurrentDownloads bounds the worker pool; 0 means one worker per target
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	PrepareDelay        time.Duration `yaml:"prepare_delay" json:"prepare_delay"`
	// MaxPrepareAttempts of 0 keeps waiting for the archive indefinitely
	MaxPrepareAttempts int  `yaml:"max_prepare_attempts" json:"max_prepare_attempts"`
	StrictPadding      bool `yaml:"strict_padding" json:"strict_padding"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			BaseURL:          DefaultBaseURL,
			DownloadInfoURL:  DefaultDownloadInfoURL,
			QueueDownloadURL: DefaultQueueDownloadURL,
			UserAgent:        DefaultUserAgent,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Retry: RetryConfig{
			Enabled:      true,
			MaxAttempts:  3,
			BaseDelay:    1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Output: OutputConfig{
			BaseDirectory: "downloads",
			ListingRoot:   ".",
			Store:         StoreFilesystem,
			SkipExisting:  true,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 8,
			DownloadTimeout:     2 * time.Minute,
			PrepareDelay:        10 * time.Second,
			MaxPrepareAttempts:  0,
			StrictPadding:       false,
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("SAAFETCH_BASE_URL"); v != "" {
		c.Archive.BaseURL = v
	}
	if v := os.Getenv("SAAFETCH_DOWNLOAD_INFO_URL"); v != "" {
		c.Archive.DownloadInfoURL = v
	}
	if v := os.Getenv("SAAFETCH_QUEUE_DOWNLOAD_URL"); v != "" {
		c.Archive.QueueDownloadURL = v
	}
	if v := os.Getenv("SAAFETCH_USER_AGENT"); v != "" {
		c.Archive.UserAgent = v
	}

	if v := os.Getenv("SAAFETCH_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SAAFETCH_REQUESTS_PER_MINUTE: %w", err))
		} else {
			c.RateLimit.RequestsPerMinute = n
		}
	}

	if v := os.Getenv("SAAFETCH_OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv("SAAFETCH_LISTING_ROOT"); v != "" {
		c.Output.ListingRoot = v
	}
	if v := os.Getenv("SAAFETCH_STORE"); v != "" {
		c.Output.Store = strings.ToLower(v)
	}
	if v := os.Getenv("SAAFETCH_BUCKET_URL"); v != "" {
		c.Output.BucketURL = v
	}
	if v := os.Getenv("SAAFETCH_SKIP_EXISTING"); v != "" {
		c.Output.SkipExisting = strings.ToLower(v) == "true"
	}

	if v := os.Getenv("SAAFETCH_CONCURRENT_DOWNLOADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SAAFETCH_CONCURRENT_DOWNLOADS: %w", err))
		} else {
			c.Download.ConcurrentDownloads = n
		}
	}
	if v := os.Getenv("SAAFETCH_PREPARE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SAAFETCH_PREPARE_DELAY: %w", err))
		} else {
			c.Download.PrepareDelay = d
		}
	}
	if v := os.Getenv("SAAFETCH_MAX_PREPARE_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SAAFETCH_MAX_PREPARE_ATTEMPTS: %w", err))
		} else {
			c.Download.MaxPrepareAttempts = n
		}
	}

	if v := os.Getenv("SAAFETCH_NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}

	if v := os.Getenv("SAAFETCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SAAFETCH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".saafetch.yaml",
		".saafetch.yml",
		"saafetch.yaml",
		filepath.Join(home, ".config", "saafetch", "config.yaml"),
		filepath.Join(home, ".config", "saafetch", "config.yml"),
		filepath.Join(home, ".saafetch.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Archive endpoints must be absolute URLs
	for name, raw := range map[string]string{
		"archive base URL":           c.Archive.BaseURL,
		"archive download info URL":  c.Archive.DownloadInfoURL,
		"archive queue download URL": c.Archive.QueueDownloadURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Retry.Enabled && c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive when retry is enabled"))
	}

	if c.Download.ConcurrentDownloads < 0 {
		errs = append(errs, errors.New("concurrent downloads cannot be negative"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.PrepareDelay < 0 {
		errs = append(errs, errors.New("prepare delay cannot be negative"))
	}
	if c.Download.MaxPrepareAttempts < 0 {
		errs = append(errs, errors.New("max prepare attempts cannot be negative"))
	}

	switch strings.ToLower(c.Output.Store) {
	case StoreFilesystem:
		if c.Output.BaseDirectory == "" {
			errs = append(errs, errors.New("output directory is required"))
		}
	case StoreBlob:
		if c.Output.BucketURL == "" {
			errs = append(errs, errors.New("bucket URL is required for the blob store"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid store %q (want %q or %q)", c.Output.Store, StoreFilesystem, StoreBlob))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Headers returns the full request header set: configured extras plus the user agent
func (c *Config) Headers() map[string]string {
	headers := make(map[string]string, len(c.Archive.Headers)+1)
	for k, v := range c.Archive.Headers {
		headers[k] = v
	}
	if c.Archive.UserAgent != "" {
		headers["User-Agent"] = c.Archive.UserAgent
	}
	return headers
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if root, ok := flags["listing-root"].(string); ok && root != "" {
		c.Output.ListingRoot = root
	}
	if store, ok := flags["store"].(string); ok && store != "" {
		c.Output.Store = strings.ToLower(store)
	}
	if bucketURL, ok := flags["bucket-url"].(string); ok && bucketURL != "" {
		c.Output.BucketURL = bucketURL
	}
	if noSkip, ok := flags["no-skip"].(bool); ok && noSkip {
		c.Output.SkipExisting = false
	}
	if concurrent, ok := flags["concurrent-downloads"].(int); ok && concurrent >= 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if delay, ok := flags["prepare-delay"].(time.Duration); ok && delay >= 0 {
		c.Download.PrepareDelay = delay
	}
	if attempts, ok := flags["max-prepare-attempts"].(int); ok && attempts >= 0 {
		c.Download.MaxPrepareAttempts = attempts
	}
	if timeout, ok := flags["download-timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.DownloadTimeout = timeout
	}
	if strict, ok := flags["strict-padding"].(bool); ok && strict {
		c.Download.StrictPadding = true
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm >= 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if maxAttempts, ok := flags["max-retries"].(int); ok && maxAttempts > 0 {
		c.Retry.MaxAttempts = maxAttempts
	}
	if enabled, ok := flags["notifications-enabled"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".saafetch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
