package ir

// Version constants for the record schema and the engine.
const (
	// SchemaVersion is bumped whenever a persisted record shape changes.
	SchemaVersion = "1"

	// EngineVersion is the socialgraph engine version.
	EngineVersion = "0.1.0"
)
