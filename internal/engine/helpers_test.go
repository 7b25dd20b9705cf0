package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
)

// bell adds a two-qubit Bell circuit named name over registers q and c.
func bell(t *testing.T, p *Program, name string) *ir.Circuit {
	t.Helper()
	q, err := p.CreateQuantumRegister("q", 2)
	require.NoError(t, err)
	c, err := p.CreateClassicalRegister("c", 2)
	require.NoError(t, err)

	circ, err := p.CreateCircuit(name, []string{"q"}, []string{"c"})
	require.NoError(t, err)
	require.NoError(t, circ.Apply("h", nil, q.Bit(0)))
	require.NoError(t, circ.Apply("cx", nil, q.Bit(0), q.Bit(1)))
	require.NoError(t, circ.Measure(q.Bit(0), c.Bit(0)))
	require.NoError(t, circ.Measure(q.Bit(1), c.Bit(1)))
	return circ
}

type sinkRecord struct {
	runID string
	seq   int64
	rec   ir.ExecutionRecord
}

type recordingSink struct {
	records []sinkRecord
	err     error
}

func (s *recordingSink) WriteRecord(_ context.Context, runID string, seq int64, rec ir.ExecutionRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, sinkRecord{runID: runID, seq: seq, rec: rec})
	return nil
}

// fakeEngine returns counts for every job, or results verbatim when set.
type fakeEngine struct {
	counts  ir.Counts
	results []ir.JobResult
	calls   int
}

func (e *fakeEngine) Run(_ context.Context, jobs []ir.CompiledJob) ([]ir.JobResult, error) {
	e.calls++
	if e.results != nil {
		return e.results, nil
	}
	out := make([]ir.JobResult, len(jobs))
	for i := range jobs {
		out[i] = ir.JobResult{
			Result: &ir.Result{Data: ir.ResultData{Counts: e.counts}},
			Status: ir.StatusCompleted,
		}
	}
	return out, nil
}
