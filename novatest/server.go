package novatest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	nova "github.com/sodle/nova-go"
)

// MockServer is a test HTTP server that records requests for verification.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*RecordedRequest

	// ResponseFunc allows customizing responses. If nil, returns an
	// empty search page.
	ResponseFunc func(r *http.Request) (int, any)
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	Authorization string
	RequestID     string
}

// NewMockServer creates a new mock server for testing.
func NewMockServer() *MockServer {
	ms := &MockServer{
		requests: make([]*RecordedRequest, 0),
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		ms.mu.Lock()
		ms.requests = append(ms.requests, &RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Body:          body,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-Id"),
		})
		ms.mu.Unlock()

		status := http.StatusOK
		var response any

		if ms.ResponseFunc != nil {
			status, response = ms.ResponseFunc(r)
		} else {
			response = map[string]any{
				"records":        []nova.Event{},
				"returned_count": 0,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}))

	return ms
}

// Client creates a nova client pointed at the mock server.
func (ms *MockServer) Client(opts ...nova.ConfigOption) (*nova.Client, error) {
	allOpts := append([]nova.ConfigOption{nova.WithBaseURL(ms.URL)}, opts...)
	return nova.New("test-client-id", "test-client-secret", allOpts...)
}

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*RecordedRequest{}, ms.requests...)
}

// RequestCount returns the number of recorded requests.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// LastRequest returns the most recent request, or nil if none.
func (ms *MockServer) LastRequest() *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// RequestAt returns the request at the given index, or nil if out of bounds.
func (ms *MockServer) RequestAt(index int) *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if index < 0 || index >= len(ms.requests) {
		return nil
	}
	return ms.requests[index]
}

// Reset clears all recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = make([]*RecordedRequest, 0)
}

// Response scenarios

// ServeEvents configures the server to serve the given events with real
// index/count paging, the way the search endpoint does. Aggregation
// requests (with a report parameter) answer with the given rows.
func (ms *MockServer) ServeEvents(events []nova.Event, aggregationRows ...nova.AggregationRow) {
	ms.ResponseFunc = func(r *http.Request) (int, any) {
		q := r.URL.Query()

		if q.Get("report") != "" {
			rows := aggregationRows
			if rows == nil {
				rows = []nova.AggregationRow{}
			}
			return http.StatusOK, map[string]any{"records": rows}
		}

		index, _ := strconv.Atoi(q.Get("index"))
		count, _ := strconv.Atoi(q.Get("count"))

		page := []nova.Event{}
		if index >= 0 && index < len(events) {
			end := index + count
			if end > len(events) {
				end = len(events)
			}
			page = events[index:end]
		}

		return http.StatusOK, map[string]any{
			"records":        page,
			"returned_count": len(page),
			"total":          len(events),
		}
	}
}

// RespondWithError configures the server to respond with an error.
func (ms *MockServer) RespondWithError(statusCode int, message string) {
	ms.ResponseFunc = func(r *http.Request) (int, any) {
		return statusCode, map[string]string{
			"error":   message,
			"message": message,
		}
	}
}

// RespondWithUnauthorized configures the server to reject credentials.
func (ms *MockServer) RespondWithUnauthorized() {
	ms.RespondWithError(http.StatusUnauthorized, "Invalid credentials")
}

// RespondWithQueryRejection configures the server to reject the search
// expression the way the service reports a malformed query.
func (ms *MockServer) RespondWithQueryRejection(message string) {
	ms.RespondWithError(http.StatusBadRequest, message)
}

// RespondWithIngestSuccess configures the server to accept ingestion
// batches, reporting the given accepted count.
func (ms *MockServer) RespondWithIngestSuccess(count int) {
	ms.ResponseFunc = func(r *http.Request) (int, any) {
		return http.StatusOK, nova.IngestResult{Count: count}
	}
}

// RespondWith configures the server to respond with a custom status and body.
func (ms *MockServer) RespondWith(statusCode int, body any) {
	ms.ResponseFunc = func(r *http.Request) (int, any) {
		return statusCode, body
	}
}

// RequestsWithPath returns all requests that matched the given path.
func (ms *MockServer) RequestsWithPath(path string) []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var matched []*RecordedRequest
	for _, req := range ms.requests {
		if req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}
