package store

import (
	"context"
	"fmt"
)

// WriteRun records a batch run.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, tool_version, ir_version, input_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.ToolVersion, run.IRVersion, run.InputCount)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// RecordConversion appends one conversion to a run.
//
// The run referenced by RunID must exist (foreign key constraint). Writing the
// same (run_id, seq) twice is silently ignored.
func (s *Store) RecordConversion(ctx context.Context, c Conversion) error {
	if c.Status != StatusOK && c.Status != StatusFailed {
		return fmt.Errorf("record conversion: invalid status %q", c.Status)
	}
	if c.Status == StatusOK && c.ErrorKind != "" {
		return fmt.Errorf("record conversion: successful conversion with error kind %q", c.ErrorKind)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions
		(run_id, seq, source, digest, status, error_kind, message, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		c.RunID,
		c.Seq,
		c.Source,
		c.Digest,
		string(c.Status),
		c.ErrorKind,
		c.Message,
		c.Output,
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}
