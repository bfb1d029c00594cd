package compiler

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/crushtxt/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// schemaDefinition is the definition in schema.cue that a dump must satisfy.
const schemaDefinition = "#CrushDump"

// requiredSections are the top-level fields every dump must carry.
var requiredSections = []string{"tunables", "devices", "types", "buckets", "rules"}

// LoadFile reads and loads a dump from disk.
func LoadFile(path string) (*ir.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dump: %w", err)
	}
	return Load(data, path)
}

// Load parses a dump into a Document.
//
// The dump is compiled as a CUE value (JSON is a subset of CUE) and unified
// with the embedded schema, so structural problems are reported with their
// position in the dump. No cross-references are checked here: dangling item
// ids surface during sequencing or rendering.
func Load(data []byte, filename string) (*ir.Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling embedded schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err, filename, "document")
	}
	if value.IncompleteKind() != cue.StructKind {
		return nil, &Error{
			Kind:    KindMalformedInput,
			Stage:   StageLoad,
			Entity:  "document",
			Message: "top level must be an object",
			Pos:     value.Pos(),
		}
	}

	for _, section := range requiredSections {
		if !value.LookupPath(cue.ParsePath(section)).Exists() {
			return nil, &Error{
				Kind:    KindMalformedInput,
				Stage:   StageLoad,
				Entity:  section,
				Message: "required section is missing",
				Pos:     value.Pos(),
			}
		}
	}

	unified := schema.LookupPath(cue.ParsePath(schemaDefinition)).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, filename, "document")
	}

	doc := &ir.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, newError(KindMalformedInput, StageLoad, "document", "decoding: %v", err)
	}

	slog.Debug("loaded dump",
		"file", filename,
		"devices", len(doc.Devices),
		"types", len(doc.Types),
		"buckets", len(doc.Buckets),
		"rules", len(doc.Rules),
		"tunables", len(doc.Tunables.Values),
	)

	return doc, nil
}

// formatCUEError converts a CUE error into a MalformedInput error, keeping
// the position and path of the first underlying error.
func formatCUEError(err error, filename, fallback string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return newError(KindMalformedInput, StageLoad, fallback, "%v", err)
	}

	first := errs[0]
	entity := fallback
	if path := first.Path(); len(path) > 0 {
		entity = strings.Join(path, ".")
	}

	ce := &Error{
		Kind:    KindMalformedInput,
		Stage:   StageLoad,
		Entity:  entity,
		Message: first.Error(),
	}

	// Prefer a position inside the dump over one inside the schema.
	positions := errors.Positions(first)
	for _, pos := range positions {
		if pos.Filename() == filename {
			ce.Pos = pos
			return ce
		}
	}
	if len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
