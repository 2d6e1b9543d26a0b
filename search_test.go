package nova

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client pointed at the given test server, with
// retries effectively disabled so failures surface on the first attempt.
func newTestClient(t *testing.T, serverURL string, opts ...ConfigOption) *Client {
	t.Helper()

	allOpts := append([]ConfigOption{
		WithBaseURL(serverURL),
		WithRetryDelay(time.Millisecond),
	}, opts...)

	client, err := New("test-client-id", "test-client-secret", allOpts...)
	require.NoError(t, err)
	return client
}

func TestSearchQueryEncoding(t *testing.T) {
	client := MustClient("id", "secret")

	tests := []struct {
		name   string
		search EventSearch
		report string
		want   url.Values
	}{
		{
			name:   "bare search",
			search: client.Search("source=webserver"),
			want: url.Values{
				"keywords": {"source=webserver"},
				"index":    {"0"},
				"count":    {"10"},
			},
		},
		{
			name:   "single eval",
			search: client.Search("entity=nas").Eval("gb", "kb / 1024 / 1024"),
			want: url.Values{
				"keywords":  {"entity=nas"},
				"index":     {"0"},
				"count":     {"10"},
				"transform": {"eval gb=kb / 1024 / 1024"},
			},
		},
		{
			name: "chained evals preserve order",
			search: client.Search("entity=nas").
				Eval("gb", "kb / 1024 / 1024").
				Eval("path", "dirname + filename"),
			want: url.Values{
				"keywords":  {"entity=nas"},
				"index":     {"0"},
				"count":     {"10"},
				"transform": {"eval gb=kb / 1024 / 1024 path=dirname + filename"},
			},
		},
		{
			name:   "time bounds prefix keywords",
			search: client.Search("source=webserver").Earliest("-7d").Latest("-1h"),
			want: url.Values{
				"keywords": {"earliest_time=-7d latest_time=-1h source=webserver"},
				"index":    {"0"},
				"count":    {"10"},
			},
		},
		{
			name:   "stats report",
			search: client.Search("source=webserver"),
			report: "stats count by clientip",
			want: url.Values{
				"keywords": {"source=webserver"},
				"index":    {"0"},
				"count":    {"10"},
				"report":   {"stats count by clientip"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.search.query(0, 10, tt.report)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchEvalOrderManySteps(t *testing.T) {
	client := MustClient("id", "secret")

	s := client.Search("*")
	want := "eval"
	for _, step := range []struct{ field, expr string }{
		{"a", "1"}, {"b", "a + 1"}, {"c", "b + 1"}, {"d", "c + 1"}, {"e", "d + 1"},
	} {
		s = s.Eval(step.field, step.expr)
		want += " " + step.field + "=" + step.expr
	}

	assert.Equal(t, want, s.transform())
}

func TestSearchBranchingPrefixIsIndependent(t *testing.T) {
	client := MustClient("id", "secret")

	prefix := client.Search("*").Eval("a", "1")
	left := prefix.Eval("b", "2")
	right := prefix.Eval("c", "3")

	assert.Equal(t, "eval a=1", prefix.transform())
	assert.Equal(t, "eval a=1 b=2", left.transform())
	assert.Equal(t, "eval a=1 c=3", right.transform())
}

func TestSearchEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events", r.URL.Path)
		assert.Equal(t, "source=webserver", r.URL.Query().Get("keywords"))
		assert.Equal(t, "0", r.URL.Query().Get("index"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))

		json.NewEncoder(w).Encode(searchPageResponse{
			Records: []Event{
				{"entity": "host-1", "source": "webserver"},
				{"entity": "host-2", "source": "webserver"},
			},
			ReturnedCount: 2,
			Total:         2,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Search("source=webserver").Events(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.Len(t, page.Records, 2)
	assert.Equal(t, 0, page.Index)
	assert.Equal(t, 10, page.Count)
	assert.Equal(t, 2, page.Returned)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "host-1", page.Records[0].String("entity"))
	assert.False(t, page.HasMore())
}

func TestSearchEventsShortPageIsNotAnError(t *testing.T) {
	// The double holds only 4 matching records; a request for 10 must
	// return them all without error and signal the end of the data.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		records := make([]Event, 4)
		for i := range records {
			records[i] = Event{"entity": "host", "source": "s", "n": float64(i)}
		}
		json.NewEncoder(w).Encode(searchPageResponse{Records: records, ReturnedCount: 4})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Search("*").Events(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Len(t, page.Records, 4)
	assert.Equal(t, 4, page.Returned)
	assert.False(t, page.HasMore())
}

func TestSearchEventsEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchPageResponse{Records: []Event{}, ReturnedCount: 0})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Search("*").Events(context.Background(), 100, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Equal(t, 100, page.Index)
}

func TestSearchEventsArgumentValidation(t *testing.T) {
	client := MustClient("id", "secret")

	_, err := client.Search("*").Events(context.Background(), -1, 10)
	valErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "index", valErr.Field)

	_, err = client.Search("*").Events(context.Background(), 0, 0)
	valErr, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "count", valErr.Field)
}

func TestSearchStatsPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stats count by clientip", r.URL.Query().Get("report"))
		json.NewEncoder(w).Encode(aggregationResponse{
			Records: []AggregationRow{
				{"clientip": "1.2.3.4", "count": float64(3)},
				{"clientip": "5.6.7.8", "count": float64(1)},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	rows, err := client.Search("source=webserver").Stats(context.Background(), "count by clientip")
	require.NoError(t, err)

	// Rows come back unmodified, in the order the service returned them.
	require.Len(t, rows, 2)
	assert.Equal(t, AggregationRow{"clientip": "1.2.3.4", "count": float64(3)}, rows[0])
	assert.Equal(t, AggregationRow{"clientip": "5.6.7.8", "count": float64(1)}, rows[1])
}

func TestSearchPrefixBranchesIntoIndependentTerminals(t *testing.T) {
	var reports []string
	var transforms []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reports = append(reports, r.URL.Query().Get("report"))
		transforms = append(transforms, r.URL.Query().Get("transform"))
		json.NewEncoder(w).Encode(aggregationResponse{Records: []AggregationRow{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	prefix := client.Search("source=webserver").Eval("mb", "kb / 1024")

	_, err := prefix.Stats(context.Background(), "count by clientip")
	require.NoError(t, err)
	_, err = prefix.Timechart(context.Background(), "avg(mb)")
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "stats count by clientip", reports[0])
	assert.Equal(t, "timechart avg(mb)", reports[1])

	// Both requests carry the full shared prefix.
	assert.Equal(t, "eval mb=kb / 1024", transforms[0])
	assert.Equal(t, "eval mb=kb / 1024", transforms[1])
}

func TestSearchQueryRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "unknown field: clientipp"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Search("source=webserver").Stats(context.Background(), "count by clientipp")
	queryErr, ok := AsQueryError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, queryErr.StatusCode)
	assert.Equal(t, "unknown field: clientipp", queryErr.Message)
	assert.Equal(t, "source=webserver", queryErr.Query)
	assert.False(t, IsRetryable(err))
}

func TestSearchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Search("*").Events(context.Background(), 0, 10)
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.True(t, reqErr.IsUnauthorized())
	assert.Equal(t, ErrCodeAuth, reqErr.Code())
	assert.False(t, IsRetryable(err))
}

func TestSearchPagingParametersEchoIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		index, _ := strconv.Atoi(r.URL.Query().Get("index"))
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))

		// Never return more records than requested.
		records := make([]Event, count)
		for i := range records {
			records[i] = Event{"entity": "e", "source": "s", "offset": float64(index + i)}
		}
		json.NewEncoder(w).Encode(searchPageResponse{Records: records, ReturnedCount: count})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	page, err := client.Search("*").Events(context.Background(), 20, 5)
	require.NoError(t, err)
	assert.Equal(t, 20, page.Index)
	assert.Equal(t, 5, page.Count)
	assert.LessOrEqual(t, len(page.Records), 5)
	assert.Equal(t, float64(20), page.Records[0].Float("offset"))
	assert.True(t, page.HasMore())
}
