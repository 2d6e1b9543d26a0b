package nova

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// evalStep is one computed-field operation in a search chain.
type evalStep struct {
	field      string
	expression string
}

// EventSearch is a chainable builder for event searches, inspired by
// Django's QuerySets. It is returned by Client.Search; you never need to
// construct one yourself.
//
// Chain steps (Eval, Earliest, Latest) return new values instead of
// mutating the receiver, and terminal calls (Events, IterEvents, Stats,
// Timechart) build their request from the accumulated state without
// consuming it. A shared prefix can therefore branch:
//
//	web := client.Search("source=webserver").Eval("mb", "kb / 1024")
//	rows, _ := web.Stats(ctx, "count by clientip")
//	chart, _ := web.Timechart(ctx, "avg(mb)")
//
// Each terminal call issues exactly one request (IterEvents issues one
// per page as it is consumed).
type EventSearch struct {
	client   *Client
	terms    string
	earliest string
	latest   string
	evals    []evalStep
}

// Eval appends a computed-field step: the named field is calculated from
// the given eval expression over existing fields, including fields
// produced by earlier Eval steps. Steps apply in chain order.
//
//	client.Search("entity=nas").
//	    Eval("gb", "kb / 1024 / 1024").
//	    Eval("path", "dirname + filename")
func (s EventSearch) Eval(field, expression string) EventSearch {
	// Copy-on-append keeps branched chains independent.
	evals := make([]evalStep, len(s.evals), len(s.evals)+1)
	copy(evals, s.evals)
	s.evals = append(evals, evalStep{field: field, expression: expression})
	return s
}

// Earliest bounds the search to events at or after the given timespec
// (e.g. "-7d", "-4h@h").
func (s EventSearch) Earliest(timespec string) EventSearch {
	s.earliest = timespec
	return s
}

// Latest bounds the search to events at or before the given timespec.
func (s EventSearch) Latest(timespec string) EventSearch {
	s.latest = timespec
	return s
}

// keywords returns the full keywords parameter: optional time bounds
// followed by the raw search terms.
func (s EventSearch) keywords() string {
	var b strings.Builder
	if s.earliest != "" {
		b.WriteString("earliest_time=")
		b.WriteString(s.earliest)
		b.WriteString(" ")
	}
	if s.latest != "" {
		b.WriteString("latest_time=")
		b.WriteString(s.latest)
		b.WriteString(" ")
	}
	b.WriteString(s.terms)
	return b.String()
}

// transform encodes the eval chain as a single transform parameter,
// preserving chain order: "eval f1=expr1 f2=expr2".
func (s EventSearch) transform() string {
	parts := make([]string, 0, len(s.evals)+1)
	parts = append(parts, "eval")
	for _, e := range s.evals {
		parts = append(parts, e.field+"="+e.expression)
	}
	return strings.Join(parts, " ")
}

// query materializes the accumulated chain into request parameters.
func (s EventSearch) query(index, count int, report string) url.Values {
	q := url.Values{}
	q.Set("keywords", s.keywords())
	q.Set("index", strconv.Itoa(index))
	q.Set("count", strconv.Itoa(count))
	if len(s.evals) > 0 {
		q.Set("transform", s.transform())
	}
	if report != "" {
		q.Set("report", report)
	}
	return q
}

// fetchPage issues one search-page request.
func (s EventSearch) fetchPage(ctx context.Context, index, count int) (*Page, error) {
	var resp searchPageResponse
	err := s.client.http.get(ctx, s.client.apiPath("events"), opSearch, s.query(index, count, ""), &resp)
	if err != nil {
		return nil, err
	}

	return &Page{
		Records:  resp.Records,
		Index:    index,
		Count:    count,
		Returned: resp.ReturnedCount,
		Total:    resp.Total,
	}, nil
}

// Events fetches one page of matching events, starting at offset index
// with at most count records. A Page with fewer than count records (or
// none) means the result set ended; that is not an error.
func (s EventSearch) Events(ctx context.Context, index, count int) (*Page, error) {
	if index < 0 {
		return nil, NewValidationError("index", "must not be negative")
	}
	if count <= 0 {
		return nil, NewValidationError("count", "must be positive")
	}
	return s.fetchPage(ctx, index, count)
}

// IterEvents returns a lazy iterator over all events matched by the
// search, fetching pages on demand so you don't have to re-request
// subsequent pages manually. Each call returns an independent iterator
// with its own cursor.
func (s EventSearch) IterEvents() *EventIterator {
	return &EventIterator{
		search:   s,
		pageSize: s.client.config.SearchPageSize,
	}
}

// Stats aggregates the search results with a stats command, e.g.
// "count by clientip". Rows are returned exactly as the service produced
// them, in service order.
func (s EventSearch) Stats(ctx context.Context, statsExpression string) ([]AggregationRow, error) {
	return s.aggregate(ctx, "stats "+statsExpression)
}

// Timechart aggregates the search results with a timechart command, e.g.
// "count" or "avg(mb)". Rows are returned exactly as the service
// produced them, in service order.
func (s EventSearch) Timechart(ctx context.Context, timechartExpression string) ([]AggregationRow, error) {
	return s.aggregate(ctx, "timechart "+timechartExpression)
}

// aggregate issues one aggregation request with the given report command.
// The service ignores paging for reports; the parameters are sent with
// their defaults for wire compatibility.
func (s EventSearch) aggregate(ctx context.Context, report string) ([]AggregationRow, error) {
	var resp aggregationResponse
	err := s.client.http.get(ctx, s.client.apiPath("events"), opAggregate, s.query(0, DefaultSearchPageSize, report), &resp)
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}
