package nova

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// jsonCodec is the wire codec for all request and response bodies.
var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// userAgent identifies this client to the service.
const userAgent = "nova-go/1.0.0"

// operation classifies a request so transport failures map onto the
// right error type: a 400 on a search is a rejected query, a 400 on an
// ingest is a rejected payload.
type operation int

const (
	opSearch operation = iota
	opAggregate
	opIngest
	opHealth
)

// httpClient handles authenticated HTTP requests to the Nova API.
type httpClient struct {
	client     *http.Client
	baseURL    string
	authHeader string
	maxRetries int
	retryDelay time.Duration
	logger     StructuredLogger
	metrics    Metrics
	debug      bool
}

// newHTTPClient creates a new HTTP client from a validated config.
func newHTTPClient(cfg *Config) *httpClient {
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))

	logger := cfg.StructuredLogger
	if logger == nil && cfg.Logger != nil {
		logger = WrapPrintfLogger(cfg.Logger)
	}

	return &httpClient{
		client:     cfg.HTTPClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authHeader: "Basic " + auth,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
		metrics:    cfg.Metrics,
		debug:      cfg.Debug,
	}
}

// request represents an HTTP request to be made.
type request struct {
	method string
	path   string
	op     operation
	query  url.Values
	body   any
	result any
}

// do executes an HTTP request, retrying transient failures with bounded
// exponential backoff. Query and validation rejections are never retried.
func (h *httpClient) do(ctx context.Context, req *request) error {
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			delay := h.retryDelay * time.Duration(1<<uint(attempt-1))
			if h.metrics != nil {
				h.metrics.IncrementCounter("nova.http.retries", 1)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := h.doOnce(ctx, req)
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// doOnce executes a single HTTP request.
func (h *httpClient) doOnce(ctx context.Context, req *request) error {
	u := h.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		bodyBytes, err := jsonCodec.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("nova: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("nova: failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Authorization", h.authHeader)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-Id", requestID)

	if h.debug && h.logger != nil {
		h.logger.Debug("nova: sending request",
			"method", req.method,
			"url", u,
			"request_id", requestID,
			"authorization", MaskAuthHeader(h.authHeader),
		)
	}

	start := time.Now()
	resp, err := h.client.Do(httpReq)
	if h.metrics != nil {
		h.metrics.IncrementCounter("nova.http.requests", 1)
		h.metrics.RecordDuration("nova.http.request_duration", time.Since(start))
	}
	if err != nil {
		// Context cancellation is not a transport failure; surface it as-is.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RequestError{RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{RequestID: requestID, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		if h.metrics != nil {
			h.metrics.IncrementCounter("nova.http.errors", 1)
		}
		return h.errorFromResponse(req, resp, respBody, requestID)
	}

	if req.result != nil && len(respBody) > 0 {
		if err := jsonCodec.Unmarshal(respBody, req.result); err != nil {
			return fmt.Errorf("nova: failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// errorBody is the shape of an error response from the service.
type errorBody struct {
	Message      string `json:"message"`
	ErrorMessage string `json:"error"`
}

// errorFromResponse maps an error response onto the client's error
// taxonomy based on status code and the kind of operation.
func (h *httpClient) errorFromResponse(req *request, resp *http.Response, body []byte, requestID string) error {
	var eb errorBody
	if len(body) > 0 {
		// Best effort; an unparseable body leaves the messages empty.
		_ = jsonCodec.Unmarshal(body, &eb)
	}

	// 400/422 on a search or aggregation means the service rejected the
	// expression. On an ingest it means the payload failed validation.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		switch req.op {
		case opSearch, opAggregate:
			return &QueryError{
				StatusCode:   resp.StatusCode,
				Message:      eb.Message,
				ErrorMessage: eb.ErrorMessage,
				Query:        req.query.Get("keywords"),
				RequestID:    requestID,
			}
		case opIngest:
			msg := eb.Message
			if msg == "" {
				msg = eb.ErrorMessage
			}
			if msg == "" {
				msg = "event batch rejected by service"
			}
			return &ValidationError{Field: "events", Message: msg}
		}
	}

	return &RequestError{
		StatusCode:   resp.StatusCode,
		Message:      eb.Message,
		ErrorMessage: eb.ErrorMessage,
		RequestID:    requestID,
		RetryAfter:   parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// parseRetryAfter parses a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// get performs a GET request.
func (h *httpClient) get(ctx context.Context, path string, op operation, query url.Values, result any) error {
	return h.do(ctx, &request{
		method: http.MethodGet,
		path:   path,
		op:     op,
		query:  query,
		result: result,
	})
}

// post performs a POST request.
func (h *httpClient) post(ctx context.Context, path string, op operation, body any, result any) error {
	return h.do(ctx, &request{
		method: http.MethodPost,
		path:   path,
		op:     op,
		body:   body,
		result: result,
	})
}
