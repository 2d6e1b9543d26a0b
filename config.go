package nova

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Environment variable names for configuration.
const (
	// EnvClientID is the environment variable for the Nova client ID.
	EnvClientID = "NOVA_CLIENT_ID"
	// EnvClientSecret is the environment variable for the Nova client secret.
	EnvClientSecret = "NOVA_CLIENT_SECRET"
	// EnvBaseURL is the environment variable for the Nova API base URL.
	EnvBaseURL = "NOVA_BASE_URL"
	// EnvAPIVersion is the environment variable for the Nova API version.
	EnvAPIVersion = "NOVA_API_VERSION"
	// EnvDebug is the environment variable to enable debug mode.
	EnvDebug = "NOVA_DEBUG"
)

// Default configuration values.
const (
	// DefaultBaseURL is the hosted Nova API endpoint.
	DefaultBaseURL = "https://api.splunknova.com"

	// DefaultAPIVersion is the API version used when none is configured.
	DefaultAPIVersion = "1"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default maximum number of retry attempts.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default initial delay between retry attempts.
	DefaultRetryDelay = 1 * time.Second

	// DefaultSearchPageSize is the page size used by event iterators.
	DefaultSearchPageSize = 10

	// DefaultMaxIdleConns is the default maximum number of idle connections.
	DefaultMaxIdleConns = 100

	// DefaultMaxIdleConnsPerHost is the default maximum idle connections per host.
	DefaultMaxIdleConnsPerHost = 10

	// DefaultIdleConnTimeout is the default timeout for idle connections.
	DefaultIdleConnTimeout = 90 * time.Second

	// MaxMaxRetries is the maximum allowed retry count.
	MaxMaxRetries = 10

	// MaxTimeout is the maximum allowed request timeout.
	MaxTimeout = 5 * time.Minute

	// MaxSearchPageSize is the maximum allowed iterator page size.
	MaxSearchPageSize = 1000
)

// Config holds the configuration for the Nova client.
type Config struct {
	// ClientID is the Nova API client ID (required). Credentials are
	// opaque to the client and forwarded unchanged to the service.
	ClientID string

	// ClientSecret is the Nova API client secret (required).
	ClientSecret string

	// BaseURL is the base URL for the Nova API.
	// Defaults to the hosted endpoint if not set.
	BaseURL string

	// APIVersion selects the API version path segment ("1" by default).
	APIVersion string

	// HTTPClient is the HTTP client to use for requests.
	// If not set, a default client with sensible timeouts will be used.
	HTTPClient *http.Client

	// Timeout is the request timeout.
	// Defaults to 30 seconds if not set.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for transient
	// failures. Defaults to 3 if not set.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// Defaults to 1 second if not set.
	RetryDelay time.Duration

	// SearchPageSize is the page size event iterators fetch with.
	// Defaults to 10 if not set.
	SearchPageSize int

	// Debug enables debug logging.
	Debug bool

	// Logger is used for SDK logging (printf-style).
	// For structured logging, use StructuredLogger instead.
	Logger Logger

	// StructuredLogger is used for structured SDK logging.
	// If set, this takes precedence over Logger.
	StructuredLogger StructuredLogger

	// Metrics is used for SDK telemetry.
	// If nil, no metrics are collected.
	Metrics Metrics

	// MaxIdleConns controls the maximum number of idle connections.
	// Defaults to 100 if not set.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle connections per host.
	// Defaults to 10 if not set.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	// Defaults to 90 seconds if not set.
	IdleConnTimeout time.Duration
}

// String returns a string representation of the config with masked
// credentials. Safe to use in logs and debug output.
func (c *Config) String() string {
	return fmt.Sprintf("Config{ClientID: %q, ClientSecret: %q, BaseURL: %q, APIVersion: %q, SearchPageSize: %d}",
		MaskCredential(c.ClientID),
		MaskCredential(c.ClientSecret),
		c.BaseURL,
		c.APIVersion,
		c.SearchPageSize,
	)
}

// applyDefaults sets default values for unset configuration options.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}

	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}

	if c.SearchPageSize == 0 {
		c.SearchPageSize = DefaultSearchPageSize
	}

	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}

	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}

	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// Set default logger if debug is enabled and no logger is set
	if c.Debug && c.Logger == nil && c.StructuredLogger == nil {
		c.Logger = &defaultLogger{
			logger: log.New(os.Stderr, "nova: ", log.LstdFlags),
		}
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        c.MaxIdleConns,
				MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
				IdleConnTimeout:     c.IdleConnTimeout,
				DisableKeepAlives:   false,
			},
		}
	}
}

// validate checks that the configuration is valid.
func (c *Config) validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}

	// Validate URL format
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("nova: invalid base URL: %w", err)
	}

	// Validate numeric ranges
	if c.MaxRetries < 0 {
		return fmt.Errorf("nova: max retries cannot be negative, got %d", c.MaxRetries)
	}
	if c.MaxRetries > MaxMaxRetries {
		return fmt.Errorf("nova: max retries cannot exceed %d, got %d", MaxMaxRetries, c.MaxRetries)
	}
	if c.SearchPageSize < 1 {
		return fmt.Errorf("nova: search page size must be at least 1, got %d", c.SearchPageSize)
	}
	if c.SearchPageSize > MaxSearchPageSize {
		return fmt.Errorf("nova: search page size cannot exceed %d, got %d", MaxSearchPageSize, c.SearchPageSize)
	}

	// Validate durations
	if c.Timeout < 0 {
		return fmt.Errorf("nova: timeout cannot be negative")
	}
	if c.Timeout > MaxTimeout {
		return fmt.Errorf("nova: timeout cannot exceed %v", MaxTimeout)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("nova: retry delay cannot be negative")
	}

	if c.MaxIdleConnsPerHost > c.MaxIdleConns {
		return fmt.Errorf("nova: max idle connections per host (%d) cannot exceed total max idle connections (%d)",
			c.MaxIdleConnsPerHost, c.MaxIdleConns)
	}

	return nil
}

// DefaultConfig returns a production-ready configuration with sensible
// defaults. Use this as a starting point for most deployments.
//
//	cfg := nova.DefaultConfig("id", "secret")
//	client, err := nova.NewWithConfig(cfg)
func DefaultConfig(clientID, clientSecret string) *Config {
	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// DevelopmentConfig returns a configuration suitable for development,
// with debug logging enabled and a short retry delay so failures surface
// quickly.
func DevelopmentConfig(clientID, clientSecret string) *Config {
	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Debug:        true,
		RetryDelay:   100 * time.Millisecond,
	}
}

// NewFromEnv creates a new client using environment variables for
// configuration. It reads NOVA_CLIENT_ID, NOVA_CLIENT_SECRET, and
// optionally NOVA_BASE_URL, NOVA_API_VERSION, and NOVA_DEBUG.
func NewFromEnv(opts ...ConfigOption) (*Client, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)

	if clientID == "" {
		return nil, fmt.Errorf("nova: %s environment variable is required", EnvClientID)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("nova: %s environment variable is required", EnvClientSecret)
	}

	// Prepend env var options so explicit options can override them
	envOpts := make([]ConfigOption, 0, 3)

	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		envOpts = append(envOpts, WithBaseURL(baseURL))
	}

	if version := os.Getenv(EnvAPIVersion); version != "" {
		envOpts = append(envOpts, WithAPIVersion(version))
	}

	if debug := os.Getenv(EnvDebug); debug == "true" || debug == "1" {
		envOpts = append(envOpts, WithDebug(true))
	}

	allOpts := append(envOpts, opts...)

	return New(clientID, clientSecret, allOpts...)
}
