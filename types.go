package nova

// Event is one schema-less record of ingested data. Fields are
// caller-defined; values must be scalars (string, number, or boolean).
//
// The service requires every ingested event to carry "entity" and "source"
// fields. An optional "time" field overrides the ingestion timestamp.
type Event map[string]any

// String returns the string value of a field, or "" if the field is absent
// or not a string.
func (e Event) String(field string) string {
	if v, ok := e[field].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value of a field as a float64. JSON numbers
// decode as float64, so this covers all numeric fields on search results.
// Returns 0 if the field is absent or not numeric.
func (e Event) Float(field string) float64 {
	switch v := e[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Has reports whether the event carries the given field.
func (e Event) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Page is one bounded, ordered batch of events returned by a single search
// request.
type Page struct {
	// Records are the matching events, in the order returned by the
	// service. len(Records) is never greater than Count.
	Records []Event

	// Index is the offset of the first record, as requested.
	Index int

	// Count is the number of records requested. The service may return
	// fewer when the result set ends before Index+Count.
	Count int

	// Returned is the number of records the service reported returning.
	// It matches len(Records) on a well-formed response.
	Returned int

	// Total is the total number of matching events, if the service
	// reported it. Zero means unreported.
	Total int
}

// HasMore reports whether another page may exist after this one. A full
// page means the result set may continue; a short page means it ended.
func (p *Page) HasMore() bool {
	return len(p.Records) == p.Count && p.Count > 0
}

// searchPageResponse is the wire shape of a search page.
type searchPageResponse struct {
	Records       []Event `json:"records"`
	ReturnedCount int     `json:"returned_count"`
	Total         int     `json:"total,omitempty"`
}

// AggregationRow is one row of a stats or timechart result. The service
// defines the columns; rows are passed through unmodified.
type AggregationRow map[string]any

// aggregationResponse is the wire shape of an aggregation result.
type aggregationResponse struct {
	Records []AggregationRow `json:"records"`
}

// IngestResult is the service's response to a batch ingestion request.
type IngestResult struct {
	// Count is the number of events the service accepted, if reported.
	Count int `json:"count,omitempty"`

	// Message is an informational message from the service, if any.
	Message string `json:"message,omitempty"`
}

// HealthStatus is the service's response to a health probe.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
