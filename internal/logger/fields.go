package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID is the publish run ID
	FieldRunID = "run_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSheet is the sheet path being processed
	FieldSheet = "sheet"

	// FieldRow is the 1-based sheet row number
	FieldRow = "row"

	// FieldIdentifier is the row identifier
	FieldIdentifier = "identifier"
)

// Metric fields, attached per log line through the Entry API.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSlot is the schedule slot consumed by a row
	FieldSlot = "slot"

	// FieldBytes is a response or payload size in bytes
	FieldBytes = "bytes"
)
