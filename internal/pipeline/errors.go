package pipeline

import "fmt"

// SchemaError reports a required column missing from an uploaded batch
// after header normalization. It aborts the whole batch.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}
