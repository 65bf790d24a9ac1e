package ir

// Version constants for the command IR and engine.
const (
	// IRVersion is the command schema version.
	IRVersion = "1"

	// EngineVersion is stamped on every journaled command.
	EngineVersion = "0.1.0"
)
