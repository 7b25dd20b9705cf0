package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/engine"
	"github.com/roach88/qprog/internal/testutil"
)

// flipContext runs the x-then-measure circuit locally and returns an
// assertion context over it.
func flipContext(t *testing.T) *AssertionContext {
	t.Helper()
	p := engine.New()
	_, err := p.LoadQASM("flip", `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
x q[0];
measure q[0] -> c[0];
measure q[1] -> c[1];
`)
	require.NoError(t, err)
	require.NoError(t, p.Execute(context.Background(), []string{"flip"}, engine.DeviceLocalQASM,
		engine.DefaultWait, engine.DefaultTimeout, engine.WithShots(8), engine.WithSeed(1)))

	return &AssertionContext{
		Program: p,
		Sleeper: testutil.NewFakeSleeper(),
		Trace:   []TraceEvent{{Seq: 1, Circuit: "flip", Device: engine.DeviceLocalQASM, Status: "COMPLETED", Shots: 8}},
	}
}

func TestEvaluateAssertions(t *testing.T) {
	actx := flipContext(t)
	dev := engine.DeviceLocalQASM

	tests := []struct {
		name     string
		a        Assertion
		wantFail string
	}{
		{"counts_match", Assertion{Type: AssertCounts, Circuit: "flip", Device: dev, Expect: map[string]int{"01": 8}}, ""},
		{"counts_mismatch", Assertion{Type: AssertCounts, Circuit: "flip", Device: dev, Expect: map[string]int{"00": 8}}, "Actual: counts map[01:8]"},
		{"counts_no_execution", Assertion{Type: AssertCounts, Circuit: "flip", Device: "ibmqx2", Expect: map[string]int{}}, "no execution recorded"},
		{"total_match", Assertion{Type: AssertCountsTotal, Circuit: "flip", Device: dev, Count: 8}, ""},
		{"total_mismatch", Assertion{Type: AssertCountsTotal, Circuit: "flip", Device: dev, Count: 9}, "Actual: 8 shots"},
		{"status_match", Assertion{Type: AssertStatus, Circuit: "flip", Device: dev, Status: "COMPLETED"}, ""},
		{"status_mismatch", Assertion{Type: AssertStatus, Circuit: "flip", Device: dev, Status: "FAIL"}, "Actual: status COMPLETED"},
		{"records", Assertion{Type: AssertRecordCount, Count: 1}, ""},
		{"sleeps", Assertion{Type: AssertSleepCount, Count: 0}, ""},
		{"average_match", Assertion{Type: AssertAverage, Circuit: "flip", Observable: map[string]float64{"01": 0.5}, Value: 0.5, Tolerance: 1e-9}, ""},
		{"average_mismatch", Assertion{Type: AssertAverage, Circuit: "flip", Observable: map[string]float64{"01": 0.5}, Value: 1}, "Actual: average 0.5"},
		{"unknown", Assertion{Type: "magic"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions([]Assertion{tt.a}, actx)
			if tt.wantFail == "" {
				assert.Empty(t, failures)
				return
			}
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], tt.wantFail)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertRecordCount,
		Expected: "2 records",
		Actual:   "1 records",
		Trace:    []TraceEvent{{Seq: 7, Circuit: "bell", Device: "ibmqx2", Status: "COMPLETED"}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: record_count")
	assert.Contains(t, msg, "[7] bell on ibmqx2: COMPLETED")
}
