package nova

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// eventSchemaJSON is the service's ingestion contract: every event needs
// non-empty "entity" and "source" fields, and all values must be scalars.
const eventSchemaJSON = `{
	"type": "object",
	"required": ["entity", "source"],
	"properties": {
		"entity": {"type": "string", "minLength": 1},
		"source": {"type": "string", "minLength": 1}
	},
	"additionalProperties": {"type": ["string", "number", "boolean"]}
}`

var (
	eventSchemaOnce sync.Once
	eventSchema     *gojsonschema.Schema
	eventSchemaErr  error
)

// loadEventSchema compiles the ingestion contract schema once.
func loadEventSchema() (*gojsonschema.Schema, error) {
	eventSchemaOnce.Do(func() {
		eventSchema, eventSchemaErr = gojsonschema.NewSchema(
			gojsonschema.NewStringLoader(eventSchemaJSON))
	})
	return eventSchema, eventSchemaErr
}

// validateEvents checks a batch against the ingestion contract before it
// is sent. The first violation is returned as a ValidationError naming
// the offending event and field.
func validateEvents(events []Event) error {
	schema, err := loadEventSchema()
	if err != nil {
		return fmt.Errorf("nova: failed to compile event schema: %w", err)
	}

	for i, event := range events {
		if event == nil {
			return NewValidationError(
				fmt.Sprintf("events[%d]", i), "event must not be nil")
		}

		result, err := schema.Validate(gojsonschema.NewGoLoader(map[string]any(event)))
		if err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("events[%d]", i),
				Message: "event is not a valid JSON object",
				Err:     err,
			}
		}

		if !result.Valid() {
			first := result.Errors()[0]
			return NewValidationError(
				fmt.Sprintf("events[%d].%s", i, first.Field()),
				first.Description())
		}
	}

	return nil
}
