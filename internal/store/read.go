package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const conversionColumns = `run_id, seq, source, digest, status, error_kind, message, output`

// LookupByDigest returns the most recent successful conversion of a document
// with the given digest. The bool is false when the ledger has none.
//
// UUIDv7 run ids sort by creation time, so the newest run wins.
func (s *Store) LookupByDigest(ctx context.Context, digest string) (Conversion, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+conversionColumns+`
		FROM conversions
		WHERE digest = ? AND status = 'ok'
		ORDER BY run_id COLLATE BINARY DESC, seq DESC
		LIMIT 1
	`, digest)

	c, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversion{}, false, nil
	}
	if err != nil {
		return Conversion{}, false, fmt.Errorf("lookup digest %s: %w", digest, err)
	}
	return c, true, nil
}

// ReadRun returns all conversions of a run ordered by seq.
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]Conversion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+conversionColumns+`
		FROM conversions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	conversions := []Conversion{}
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return conversions, nil
}

// ReadRuns returns every recorded run, oldest first.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool_version, ir_version, input_count
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ToolVersion, &r.IRVersion, &r.InputCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(row scanner) (Conversion, error) {
	var c Conversion
	var status string
	err := row.Scan(&c.RunID, &c.Seq, &c.Source, &c.Digest, &status, &c.ErrorKind, &c.Message, &c.Output)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversion{}, err
		}
		return Conversion{}, fmt.Errorf("scan conversion: %w", err)
	}
	c.Status = Status(status)
	return c, nil
}
