package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/qprog/internal/ir"
)

// marshalRecord converts an ExecutionRecord to JSON TEXT for storage.
//
// Records carry floats (gate parameters, unitaries, timings), which canonical
// JSON forbids, so this uses json.Encoder with HTML escaping disabled.
// Identity comes from record_id, never from this text.
func marshalRecord(rec ir.ExecutionRecord) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalRecord parses JSON TEXT written by marshalRecord.
func unmarshalRecord(data string) (ir.ExecutionRecord, error) {
	var rec ir.ExecutionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return ir.ExecutionRecord{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
