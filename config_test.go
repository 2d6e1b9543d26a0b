package nova

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{ClientID: "id", ClientSecret: "secret"}
	cfg.applyDefaults()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelay)
	assert.Equal(t, DefaultSearchPageSize, cfg.SearchPageSize)
	assert.NotNil(t, cfg.HTTPClient)
}

func TestConfigDefaultsPreserveExplicitValues(t *testing.T) {
	httpClient := &http.Client{Timeout: time.Second}
	cfg := &Config{
		ClientID:       "id",
		ClientSecret:   "secret",
		BaseURL:        "https://nova.internal",
		APIVersion:     "2",
		SearchPageSize: 50,
		HTTPClient:     httpClient,
	}
	cfg.applyDefaults()

	assert.Equal(t, "https://nova.internal", cfg.BaseURL)
	assert.Equal(t, "2", cfg.APIVersion)
	assert.Equal(t, 50, cfg.SearchPageSize)
	assert.Same(t, httpClient, cfg.HTTPClient)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{ClientID: "id", ClientSecret: "secret"}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.ClientID = "" },
			wantErr: ErrMissingClientID,
		},
		{
			name:    "missing client secret",
			mutate:  func(c *Config) { c.ClientSecret = "" },
			wantErr: ErrMissingClientSecret,
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrMissingBaseURL,
		},
		{
			name:   "negative retries",
			mutate: func(c *Config) { c.MaxRetries = -1 },
		},
		{
			name:   "excessive retries",
			mutate: func(c *Config) { c.MaxRetries = MaxMaxRetries + 1 },
		},
		{
			name:   "zero page size",
			mutate: func(c *Config) { c.SearchPageSize = -1 },
		},
		{
			name:   "excessive page size",
			mutate: func(c *Config) { c.SearchPageSize = MaxSearchPageSize + 1 },
		},
		{
			name:   "excessive timeout",
			mutate: func(c *Config) { c.Timeout = MaxTimeout + time.Second },
		},
		{
			name:   "per-host idle conns exceed total",
			mutate: func(c *Config) { c.MaxIdleConnsPerHost = c.MaxIdleConns + 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.NoError(t, valid().validate())
}

func TestConfigStringMasksCredentials(t *testing.T) {
	cfg := DefaultConfig("my-long-client-id", "my-long-client-secret")
	cfg.applyDefaults()

	s := cfg.String()
	assert.NotContains(t, s, "my-long-client-id")
	assert.NotContains(t, s, "my-long-client-secret")
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-client-id")
	t.Setenv(EnvClientSecret, "env-client-secret")
	t.Setenv(EnvBaseURL, "https://nova.internal")
	t.Setenv(EnvDebug, "true")

	client, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-client-id", client.config.ClientID)
	assert.Equal(t, "env-client-secret", client.config.ClientSecret)
	assert.Equal(t, "https://nova.internal", client.config.BaseURL)
	assert.True(t, client.config.Debug)
}

func TestNewFromEnvExplicitOptionsWin(t *testing.T) {
	t.Setenv(EnvClientID, "env-client-id")
	t.Setenv(EnvClientSecret, "env-client-secret")
	t.Setenv(EnvBaseURL, "https://nova.internal")

	client, err := NewFromEnv(WithBaseURL("https://override.internal"))
	require.NoError(t, err)
	assert.Equal(t, "https://override.internal", client.config.BaseURL)
}

func TestNewFromEnvMissingCredentials(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	_, err := NewFromEnv()
	require.Error(t, err)
}

func TestMaskCredential(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "********"},
		{"abcdefgh", "********"},
		{"abcdefghijkl", "********ijkl"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskCredential(tt.in))
	}
}

func TestMaskAuthHeader(t *testing.T) {
	assert.Equal(t, "Basic ********", MaskAuthHeader("Basic dXNlcjpwYXNz"))
	assert.Equal(t, "Bearer ********", MaskAuthHeader("Bearer token123"))
	assert.Equal(t, "********", MaskAuthHeader("something-else"))
}
