package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Tracing fields (context level)
// Propagated through the call chain of one event batch
// ============================================

const (
	// FieldRequestID identifies one invocation (Lambda request or HTTP request)
	FieldRequestID = "request_id"

	// FieldComponent is the pipeline component name
	FieldComponent = "component"

	// FieldRecordIndex is the position of a record inside its batch
	FieldRecordIndex = "record_index"

	// FieldEventKind is the classified kind of an inbound record
	FieldEventKind = "event_kind"

	// FieldOrgID is the organization owning the video
	FieldOrgID = "org_id"

	// FieldVideoID is the video identifier
	FieldVideoID = "video_id"

	// FieldJobID is an external (detection or transcoding) job id
	FieldJobID = "job_id"
)

// ============================================
// Metric fields (entry level)
// Used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
