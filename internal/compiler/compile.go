package compiler

import (
	"bytes"
	"log/slog"

	"github.com/roach88/crushtxt/internal/ir"
)

// Output is the result of a successful conversion.
type Output struct {
	// Text is the complete crush map text.
	Text []byte

	// Order is the bucket emission order.
	Order []ir.Bucket

	// Names is the resolved id → name table.
	Names *NameTable
}

// Compile converts a loaded document into crush map text.
//
// Stages run in a fixed order: Resolve, Sequence, then the section
// renderers (tunables, devices, types, buckets, rules). The text is built in
// memory and returned only if every stage succeeds, so a failed conversion
// never yields partial output.
func Compile(doc *ir.Document) (*Output, error) {
	names, err := Resolve(doc)
	if err != nil {
		return nil, err
	}

	order, err := NewSequencer(doc.Buckets, names.DeviceIDs(), names.BucketIDs()).Order()
	if err != nil {
		return nil, err
	}

	buckets, err := RenderBuckets(order, names)
	if err != nil {
		return nil, err
	}
	rules, err := RenderRules(doc.Rules, names)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(HeaderLine + "\n")
	buf.WriteString(RenderTunables(doc))
	buf.WriteString(RenderDevices(doc))
	buf.WriteString(RenderTypes(doc))
	buf.WriteString(buckets)
	buf.WriteString(rules)
	buf.WriteString(FooterLine + "\n")

	slog.Debug("rendered crush map", "bytes", buf.Len(), "buckets", len(order), "rules", len(doc.Rules))

	return &Output{
		Text:  buf.Bytes(),
		Order: order,
		Names: names,
	}, nil
}

// ConvertFile loads a dump from disk and compiles it.
func ConvertFile(path string) (*Output, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}
