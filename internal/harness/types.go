package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates that every assertion held.
	Pass bool `json:"pass"`

	// Output is the crush map text, empty when the conversion failed.
	Output string `json:"output,omitempty"`

	// BucketOrder lists bucket names in emission order.
	BucketOrder []string `json:"bucket_order,omitempty"`

	// ErrorKind and ErrorMessage describe a failed conversion.
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Digest is the document digest, empty when the dump did not load.
	Digest string `json:"digest,omitempty"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failed reports whether the conversion itself failed.
func (r *Result) Failed() bool {
	return r.ErrorKind != "" || r.ErrorMessage != ""
}
