package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one parse run.
	FieldRunID = "run_id"
	// FieldDocument is the path of the document being parsed.
	FieldDocument = "document"
	// FieldSlug is an annotation slug.
	FieldSlug = "slug"
	// FieldSpeaker is a transcript speaker name.
	FieldSpeaker = "speaker"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the reader what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags anomalies that should stand out in console output.
	FieldAlert = "alert"
)
