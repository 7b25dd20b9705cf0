package ir

import (
	"encoding/json"
	"fmt"
)

// Status is the per-circuit outcome of one run.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusError     Status = "ERROR"
	StatusFail      Status = "FAIL"
)

// Counts maps an observed bitstring to the number of shots that produced it.
// Unseen bitstrings are absent rather than zero.
type Counts map[string]int

// Total returns the number of shots represented by the table.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Matrix is a dense complex matrix. JSON encodes each entry as [re, im].
type Matrix [][]complex128

// MarshalJSON implements json.Marshaler.
func (m Matrix) MarshalJSON() ([]byte, error) {
	rows := make([][][2]float64, len(m))
	for i, row := range m {
		rows[i] = make([][2]float64, len(row))
		for j, v := range row {
			rows[i][j] = [2]float64{real(v), imag(v)}
		}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows [][][2]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("matrix: %w", err)
	}
	out := make(Matrix, len(rows))
	for i, row := range rows {
		out[i] = make([]complex128, len(row))
		for j, v := range row {
			out[i][j] = complex(v[0], v[1])
		}
	}
	*m = out
	return nil
}

// ResultData is the data section of a result. Which fields are populated
// depends on the backend that produced it.
type ResultData struct {
	Counts         Counts  `json:"counts,omitempty"`
	ClassicalState *uint64 `json:"classical_state,omitempty"`
	Unitary        Matrix  `json:"unitary,omitempty"`
	Time           float64 `json:"time,omitempty"`
}

// Result is the raw result payload for one circuit.
type Result struct {
	Data ResultData `json:"data"`
	Date string     `json:"date,omitempty"`
}

// JobResult pairs a result with its status, one per submitted job.
type JobResult struct {
	Result *Result `json:"result"`
	Status Status  `json:"status"`
}

// ExecutionRecord is the outcome of running one compiled job on one device.
// Keyed by (Circuit, Device); a later run overwrites an earlier one.
type ExecutionRecord struct {
	CompiledJob
	Device string  `json:"device"`
	Result *Result `json:"result"`
	Status Status  `json:"status"`
}
