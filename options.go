package nova

import (
	"net/http"
	"time"
)

// ConfigOption is a function that modifies a Config.
type ConfigOption func(*Config)

// WithBaseURL sets a custom base URL for the Nova API.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithAPIVersion sets the API version path segment.
func WithAPIVersion(version string) ConfigOption {
	return func(c *Config) {
		c.APIVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

// WithRetryDelay sets the initial delay between retry attempts.
func WithRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// WithSearchPageSize sets the page size event iterators fetch with.
func WithSearchPageSize(size int) ConfigOption {
	return func(c *Config) {
		c.SearchPageSize = size
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) ConfigOption {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithLogger sets a custom logger (printf-style).
func WithLogger(logger Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStructuredLogger sets a structured logger.
// This takes precedence over Logger set via WithLogger.
func WithStructuredLogger(logger StructuredLogger) ConfigOption {
	return func(c *Config) {
		c.StructuredLogger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics Metrics) ConfigOption {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) ConfigOption {
	return func(c *Config) {
		c.MaxIdleConns = n
	}
}

// WithMaxIdleConnsPerHost sets the maximum number of idle connections per host.
func WithMaxIdleConnsPerHost(n int) ConfigOption {
	return func(c *Config) {
		c.MaxIdleConnsPerHost = n
	}
}

// WithIdleConnTimeout sets the idle connection timeout.
func WithIdleConnTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.IdleConnTimeout = d
	}
}
