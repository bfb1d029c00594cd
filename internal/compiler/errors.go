package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// ErrorKind categorizes conversion errors.
type ErrorKind string

const (
	// KindMalformedInput indicates a missing or wrongly typed field in the dump.
	KindMalformedInput ErrorKind = "MALFORMED_INPUT"

	// KindDuplicateID indicates two devices or buckets share an id.
	KindDuplicateID ErrorKind = "DUPLICATE_ID"

	// KindForwardReference indicates a bucket refers to a bucket that cannot
	// be emitted before it (a cycle in the containment graph).
	KindForwardReference ErrorKind = "UNRESOLVED_FORWARD_REFERENCE"

	// KindUnknownStepOpcode indicates a rule step outside the known opcodes.
	KindUnknownStepOpcode ErrorKind = "UNKNOWN_STEP_OPCODE"

	// KindUnknownRuleType indicates a rule type value outside 1..3.
	KindUnknownRuleType ErrorKind = "UNKNOWN_RULE_TYPE"

	// KindUnknownHash indicates a bucket hash name with no numeric code.
	KindUnknownHash ErrorKind = "UNKNOWN_HASH_ALGORITHM"

	// KindDanglingReference indicates an item or take step refers to an id
	// that is neither a device nor a bucket.
	KindDanglingReference ErrorKind = "DANGLING_REFERENCE"
)

// Stage names the pipeline stage that detected an error.
type Stage string

const (
	StageLoad     Stage = "load"
	StageResolve  Stage = "resolve"
	StageSequence Stage = "sequence"
	StageRender   Stage = "render"
)

// Error is a fatal conversion error.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Stage is where the error was detected.
	Stage Stage

	// Entity names the offending device, bucket, rule or field.
	Entity string

	// Message is a human-readable description.
	Message string

	// Pos is the position in the dump, when known (load errors only).
	Pos token.Pos
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s:%d:%d: %s: %s", e.Stage,
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Entity, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s: %s", e.Stage, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// KindOf returns the kind of a conversion error, or "" if err is not one.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind reports whether err is a conversion error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func newError(kind ErrorKind, stage Stage, entity, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Stage:   stage,
		Entity:  entity,
		Message: fmt.Sprintf(format, args...),
	}
}
