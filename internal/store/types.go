package store

// Status is the outcome of one conversion.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID          string
	ToolVersion string
	IRVersion   string
	InputCount  int
}

// Conversion is the ledger row for one input of a run.
type Conversion struct {
	RunID     string
	Seq       int64
	Source    string
	Digest    string
	Status    Status
	ErrorKind string
	Message   string
	Output    string
}
