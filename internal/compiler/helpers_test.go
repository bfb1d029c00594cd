package compiler

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/crushtxt/internal/ir"
)

// dumpPath returns the path of a shared fixture under testdata/dumps.
func dumpPath(name string) string {
	return filepath.Join("..", "..", "testdata", "dumps", name+".json")
}

// readDump reads a shared fixture.
func readDump(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(dumpPath(name))
	require.NoError(t, err)
	return data
}

func item(id int64, weight ir.Weight, pos int) ir.Item {
	return ir.Item{ID: id, Weight: weight, Pos: pos}
}

func bucket(id int64, name string, items ...ir.Item) ir.Bucket {
	var total ir.Weight
	for _, it := range items {
		total += it.Weight
	}
	return ir.Bucket{
		ID:       id,
		Name:     name,
		TypeName: "host",
		Alg:      "straw2",
		Hash:     "rjenkins1",
		Weight:   total,
		Items:    items,
	}
}

func devices(ids ...int64) []ir.Device {
	out := make([]ir.Device, len(ids))
	for i, id := range ids {
		out[i] = ir.Device{ID: id, Name: "osd." + itoa(id)}
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func ptr[T any](v T) *T {
	return &v
}

// names resolves a document and fails the test on error.
func names(t *testing.T, doc *ir.Document) *NameTable {
	t.Helper()
	table, err := Resolve(doc)
	require.NoError(t, err)
	return table
}

// bucketNames extracts names from an emission order.
func bucketNames(order []ir.Bucket) []string {
	out := make([]string, len(order))
	for i, b := range order {
		out[i] = b.Name
	}
	return out
}
