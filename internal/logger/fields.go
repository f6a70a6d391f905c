package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the upload job ID
	FieldJobID = "job_id"

	// FieldModule is the invoicing module
	FieldModule = "module"

	// FieldOwnerID is the submitting caller identity
	FieldOwnerID = "owner_id"

	// FieldImportID is the archived spreadsheet import ID
	FieldImportID = "import_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)
