package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh ledger in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun records a run with the given id.
func createTestRun(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.WriteRun(context.Background(), Run{ID: id, ToolVersion: "0.1.0", IRVersion: "1", InputCount: 2})
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
}

func okConversion(runID string, seq int64, digest, output string) Conversion {
	return Conversion{
		RunID:  runID,
		Seq:    seq,
		Source: "dump.json",
		Digest: digest,
		Status: StatusOK,
		Output: output,
	}
}
