package ir

// Version constants for the record schema and the orchestrator.
const (
	// RecordVersion is the persisted ExecutionRecord schema version.
	RecordVersion = "1"

	// EngineVersion is the qprog orchestrator version.
	EngineVersion = "0.1.0"
)
