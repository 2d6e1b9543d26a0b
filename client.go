package nova

import (
	"context"
)

// Client is the entry point for the Nova API. It is safe for concurrent
// use; every call is a synchronous request/response and the client holds
// no background goroutines, so there is nothing to shut down.
type Client struct {
	config *Config
	http   *httpClient
}

// New creates a new Nova client with the given credentials and options.
//
//	client, err := nova.New("client-id", "client-secret",
//	    nova.WithTimeout(10*time.Second),
//	)
func New(clientID, clientSecret string, opts ...ConfigOption) (*Client, error) {
	cfg := &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a new Nova client from a Config.
// The config is defaulted and validated before use.
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: cfg,
		http:   newHTTPClient(cfg),
	}, nil
}

// MustClient creates a new Nova client and panics if configuration fails.
// Use this when initialization failures should be fatal.
func MustClient(clientID, clientSecret string, opts ...ConfigOption) *Client {
	client, err := New(clientID, clientSecret, opts...)
	if err != nil {
		panic("nova: MustClient failed: " + err.Error())
	}
	return client
}

// apiPath builds a versioned API path, e.g. apiPath("events") -> "/v1/events".
func (c *Client) apiPath(endpoint string) string {
	return "/v" + c.config.APIVersion + "/" + endpoint
}

// Search starts a new event search scoped to the given space-separated
// search terms. The terms are passed through uninterpreted to the
// service's query language.
//
// The returned builder has value semantics: chain steps return new
// values, and terminal calls never consume the builder, so a shared
// prefix may be reused for multiple terminal calls.
func (c *Client) Search(terms string) EventSearch {
	return EventSearch{
		client: c,
		terms:  terms,
	}
}

// Health probes the service for connectivity and credential validity.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.http.get(ctx, "/health", opHealth, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
