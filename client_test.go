package nova

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client, err := New("my-client-id", "my-client-secret",
		WithSearchPageSize(25),
		WithAPIVersion("2"),
	)
	require.NoError(t, err)

	assert.Equal(t, "my-client-id", client.config.ClientID)
	assert.Equal(t, "my-client-secret", client.config.ClientSecret)
	assert.Equal(t, 25, client.config.SearchPageSize)
	assert.Equal(t, "/v2/events", client.apiPath("events"))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		wantErr      error
	}{
		{
			name:         "missing client id",
			clientID:     "",
			clientSecret: "secret",
			wantErr:      ErrMissingClientID,
		},
		{
			name:         "missing client secret",
			clientID:     "id",
			clientSecret: "",
			wantErr:      ErrMissingClientSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.clientID, tt.clientSecret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewWithConfigNil(t *testing.T) {
	_, err := NewWithConfig(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMustClientPanicsOnBadConfig(t *testing.T) {
	assert.Panics(t, func() {
		MustClient("", "")
	})
	assert.NotPanics(t, func() {
		MustClient("id", "secret")
	})
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(HealthStatus{Status: "ok", Version: "1.0.0"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
}

func TestClientHealthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Health(context.Background())
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.True(t, reqErr.IsUnauthorized())
}

func TestEventAccessors(t *testing.T) {
	ev := Event{"entity": "host-1", "count": float64(3), "n": 7, "big": int64(9)}

	assert.Equal(t, "host-1", ev.String("entity"))
	assert.Equal(t, "", ev.String("count"))
	assert.Equal(t, "", ev.String("missing"))

	assert.Equal(t, float64(3), ev.Float("count"))
	assert.Equal(t, float64(7), ev.Float("n"))
	assert.Equal(t, float64(9), ev.Float("big"))
	assert.Equal(t, float64(0), ev.Float("entity"))

	assert.True(t, ev.Has("entity"))
	assert.False(t, ev.Has("missing"))
}
