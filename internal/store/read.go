package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/qprog/internal/ir"
)

// HistoryEntry is one stored execution record with its bookkeeping columns.
type HistoryEntry struct {
	Seq      int64
	RecordID string
	RunID    string
	Record   ir.ExecutionRecord
}

// HistoryFilter narrows ReadHistory. Zero fields match everything.
type HistoryFilter struct {
	Circuit string
	Device  string
	RunID   string

	// Limit keeps only the newest Limit entries, still returned oldest first.
	Limit int
}

// ErrNoRecord is returned by LatestRecord when nothing matches.
var ErrNoRecord = errors.New("no execution record")

// ReadHistory returns stored records matching f.
// Results are ordered deterministically per CP-1: ORDER BY seq ASC.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadHistory(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error) {
	query := `
		SELECT seq, record_id, run_id, record
		FROM execution_records
		WHERE (? = '' OR circuit = ?)
		  AND (? = '' OR device = ?)
		  AND (? = '' OR run_id = ?)
		ORDER BY seq DESC
	`
	args := []any{f.Circuit, f.Circuit, f.Device, f.Device, f.RunID, f.RunID}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	// Newest-first above so LIMIT keeps the tail; flip back to seq order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// LatestRecord returns the newest record of circuit on device, mirroring
// the in-memory "last run overwrites" view across processes.
func (s *Store) LatestRecord(ctx context.Context, circuit, device string) (HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, record_id, run_id, record
		FROM execution_records
		WHERE circuit = ? AND device = ?
		ORDER BY seq DESC
		LIMIT 1
	`, circuit, device)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, fmt.Errorf("%w for %q on %s", ErrNoRecord, circuit, device)
	}
	return entry, err
}

// MaxSeq returns the highest stored seq, or 0 for an empty history.
// Used to resume the logical clock.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM execution_records").Scan(&seq); err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq.Int64, nil
}

// Runs lists run ids in the order they first wrote a record.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id
		FROM execution_records
		GROUP BY run_id
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (HistoryEntry, error) {
	var (
		entry      HistoryEntry
		recordJSON string
	)
	if err := row.Scan(&entry.Seq, &entry.RecordID, &entry.RunID, &recordJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return HistoryEntry{}, err
		}
		return HistoryEntry{}, fmt.Errorf("scan record: %w", err)
	}
	rec, err := unmarshalRecord(recordJSON)
	if err != nil {
		return HistoryEntry{}, err
	}
	entry.Record = rec
	return entry, nil
}
