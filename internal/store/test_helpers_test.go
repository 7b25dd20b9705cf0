package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/qprog/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a completed record with a counts result.
func createTestRecord(circuit, device string, shots int) ir.ExecutionRecord {
	return ir.ExecutionRecord{
		CompiledJob: ir.CompiledJob{
			Circuit:        circuit,
			Class:          ir.DeviceRemote,
			CompiledSource: "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[1];\ncreg c[1];\nmeasure q[0] -> c[0];\n",
			BasisGates:     ir.DefaultBasis(),
			Shots:          shots,
			MaxCredits:     3,
		},
		Device: device,
		Result: &ir.Result{Data: ir.ResultData{Counts: ir.Counts{"0": shots}}},
		Status: ir.StatusCompleted,
	}
}

// pragma reads a PRAGMA value as text.
func pragma(t *testing.T, s *Store, name string) string {
	t.Helper()
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		t.Fatalf("PRAGMA %s: %v", name, err)
	}
	return value
}
