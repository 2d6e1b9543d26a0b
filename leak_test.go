package nova

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/goleak"
)

// TestMain runs goleak verification for all tests in the package.
// This catches goroutine leaks that individual tests might miss.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Ignore known background goroutines from test infrastructure
		goleak.IgnoreTopFunction("testing.(*T).Run"),
		// Ignore HTTP transport goroutines from stdlib (connection pooling)
		goleak.IgnoreTopFunction("net/http.(*http2ClientConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*http2clientConnReadLoop).run"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// TestClientSpawnsNoGoroutines verifies the client's synchronous model:
// building searches, iterating, and ingesting never starts background
// goroutines, so there is nothing to shut down.
func TestClientSpawnsNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("testing.(*T).Run"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(IngestResult{Count: 1})
			return
		}
		json.NewEncoder(w).Encode(searchPageResponse{
			Records:       []Event{{"entity": "e", "source": "s"}},
			ReturnedCount: 1,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Ingest(ctx, []Event{{"entity": "e", "source": "s"}})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	it := client.Search("*").IterEvents()
	for it.Next(ctx) {
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}

	// Abandon an iterator mid-stream; it must not hold anything open.
	abandoned := client.Search("*").IterEvents()
	abandoned.Next(ctx)

	client.config.HTTPClient.CloseIdleConnections()
}
