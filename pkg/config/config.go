package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the likes exporter
type Config struct {
	// API request settings
	API APIConfig `yaml:"api" json:"api"`

	// Fetch loop settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Media download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds settings for talking to the X API
type APIConfig struct {
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
}

// FetchConfig holds settings for the paginated fetch loop
type FetchConfig struct {
	PageSize           int           `yaml:"page_size" json:"page_size"`
	PoliteDelay        time.Duration `yaml:"polite_delay" json:"polite_delay"`
	CheckpointInterval int           `yaml:"checkpoint_interval" json:"checkpoint_interval"`
	MaxRetries         int           `yaml:"max_retries" json:"max_retries"`
}

// OutputConfig holds output directory and format configuration
type OutputConfig struct {
	Directory      string   `yaml:"directory" json:"directory"`
	Formats        []string `yaml:"formats" json:"formats"`
	SingleFile     bool     `yaml:"single_file" json:"single_file"`
	IncludeRawJSON bool     `yaml:"include_raw_json" json:"include_raw_json"`
}

// DownloadConfig holds media download configuration
type DownloadConfig struct {
	Enabled             bool          `yaml:"enabled" json:"enabled"`
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	SkipVideos          bool          `yaml:"skip_videos" json:"skip_videos"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout: 30 * time.Second,
			BaseURL:        "https://x.com",
		},
		Fetch: FetchConfig{
			PageSize:           20,
			PoliteDelay:        time.Second,
			CheckpointInterval: 10,
			MaxRetries:         3,
		},
		Output: OutputConfig{
			Directory:  "output",
			Formats:    []string{"json", "csv", "markdown", "html"},
			SingleFile: false,
		},
		Download: DownloadConfig{
			Enabled:             true,
			ConcurrentDownloads: 3,
			DownloadTimeout:     30 * time.Second,
			SkipVideos:          false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("XLIKES_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}
	if baseURL := os.Getenv("XLIKES_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if pageSize := os.Getenv("XLIKES_PAGE_SIZE"); pageSize != "" {
		var val int
		fmt.Sscanf(pageSize, "%d", &val)
		if val > 0 {
			c.Fetch.PageSize = val
		}
	}
	if interval := os.Getenv("XLIKES_CHECKPOINT_INTERVAL"); interval != "" {
		var val int
		fmt.Sscanf(interval, "%d", &val)
		if val > 0 {
			c.Fetch.CheckpointInterval = val
		}
	}
	if outputDir := os.Getenv("XLIKES_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if concurrent := os.Getenv("XLIKES_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if media := os.Getenv("XLIKES_DOWNLOAD_MEDIA"); media != "" {
		c.Download.Enabled = strings.ToLower(media) == "true"
	}
	if logLevel := os.Getenv("XLIKES_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
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
	locations := []string{
		".xlikes.yaml",
		".xlikes.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xlikes", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xlikes", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xlikes.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// ValidFormats is the set of export formats the CLI accepts.
var ValidFormats = map[string]bool{
	"json": true, "csv": true, "markdown": true, "html": true, "all": true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 1 and 100"))
	}
	if c.Fetch.CheckpointInterval <= 0 {
		errs = append(errs, errors.New("checkpoint interval must be positive"))
	}
	if c.Fetch.PoliteDelay < 0 {
		errs = append(errs, errors.New("polite delay cannot be negative"))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	for _, f := range c.Output.Formats {
		if !ValidFormats[strings.ToLower(f)] {
			errs = append(errs, fmt.Errorf("unknown export format: %s", f))
		}
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if formats, ok := flags["format"].([]string); ok && len(formats) > 0 {
		c.Output.Formats = formats
	}
	if noMedia, ok := flags["no-media"].(bool); ok && noMedia {
		c.Download.Enabled = false
	}
	if includeRaw, ok := flags["include-raw"].(bool); ok {
		c.Output.IncludeRawJSON = includeRaw
	}
	if singleFile, ok := flags["single-file"].(bool); ok {
		c.Output.SingleFile = singleFile
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
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
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xlikes.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
