package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldContentID is the standardized structured logging key for content item identifiers.
	FieldContentID = "content_id"
	// FieldModel is the standardized structured logging key for model names.
	FieldModel = "model"
	// FieldUserID is the standardized structured logging key for user identifiers.
	FieldUserID = "user_id"
	// FieldEventType is the standardized structured logging key for machine-readable event labels.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator guidance on failures.
	FieldErrorHint = "error_hint"
	// FieldSessionID is the standardized structured logging key for daemon session identifiers.
	FieldSessionID = "session_id"
)
