package nova

import (
	"context"
)

// Ingest sends a batch of events to the service in a single request.
//
// Every event must carry "entity" and "source" fields, and all field
// values must be scalars; the batch is validated locally before any
// request is made. The batch is all-or-nothing from the client's
// perspective: on failure a single error is returned and no
// partial-success accounting is exposed.
//
// An empty batch is a no-op: it returns an empty IngestResult without
// issuing a request.
func (c *Client) Ingest(ctx context.Context, events []Event) (*IngestResult, error) {
	if len(events) == 0 {
		return &IngestResult{}, nil
	}

	if err := validateEvents(events); err != nil {
		return nil, err
	}

	var result IngestResult
	if err := c.http.post(ctx, c.apiPath("events"), opIngest, events, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
