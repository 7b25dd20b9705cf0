package store

import (
	"context"
	"fmt"

	"github.com/roach88/qprog/internal/ir"
)

// WriteRecord appends an execution record to the history.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency - rewriting a seq is
// silently ignored.
//
// Implements engine.RecordSink.
func (s *Store) WriteRecord(ctx context.Context, runID string, seq int64, rec ir.ExecutionRecord) error {
	recordID, err := ir.RecordID(runID, rec)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	recordJSON, err := marshalRecord(rec)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO execution_records
		(seq, record_id, run_id, circuit, device, status, shots, source_hash, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		seq,
		recordID,
		runID,
		rec.Circuit,
		rec.Device,
		string(rec.Status),
		rec.Shots,
		ir.SourceFingerprint(rec.CompiledSource),
		recordJSON,
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
