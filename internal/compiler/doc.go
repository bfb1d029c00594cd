// Package compiler converts a crush map dump into crush map text.
//
// The pipeline has four stages, each a pure function:
//
//  1. Load: bytes → ir.Document, validated against an embedded CUE schema
//  2. Resolve: device and bucket ids → names (NameTable)
//  3. Sequence: bucket emission order with no forward references
//  4. Render: tunables, devices, types, buckets and rules sections
//
// Every failure is an *Error carrying an ErrorKind and the Stage that
// detected it. Compile returns text only when all stages succeed.
package compiler
