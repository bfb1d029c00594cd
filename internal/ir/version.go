package ir

// Version constants for the document representation and the tool.
const (
	// IRVersion is the document representation version. It is part of the
	// digest domain so a format change never reuses stale cache entries.
	IRVersion = "1"

	// ToolVersion is the crushtxt version.
	ToolVersion = "0.1.0"
)
