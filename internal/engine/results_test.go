package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/sim"
)

func programWithCounts(t *testing.T, counts ir.Counts) *Program {
	t.Helper()
	p := New(WithEngines(map[ir.DeviceClass]sim.Engine{
		ir.DeviceLocalSampling: &fakeEngine{counts: counts},
	}))
	bell(t, p, "bell")
	require.NoError(t, p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout))
	return p
}

func TestAverageData(t *testing.T) {
	p := programWithCounts(t, ir.Counts{"00": 3, "11": 7})

	got, err := p.AverageData("bell", map[string]float64{"00": 1, "11": -1})
	require.NoError(t, err)
	assert.InDelta(t, -0.4, got, 1e-12)
}

func TestAverageData_PartialObservable(t *testing.T) {
	p := programWithCounts(t, ir.Counts{"00": 5, "01": 5})

	// "01" has no observable entry and "10" was never observed; both are
	// skipped but "01" still counts towards the total.
	got, err := p.AverageData("bell", map[string]float64{"00": 2, "10": 100})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestAverageData_EmptyCounts(t *testing.T) {
	p := programWithCounts(t, ir.Counts{})

	got, err := p.AverageData("bell", map[string]float64{"00": 1})
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestAverageData_NoExecution(t *testing.T) {
	p := New()
	bell(t, p, "bell")

	_, err := p.AverageData("bell", map[string]float64{"00": 1})
	assert.True(t, IsNotFound(err))
}

func TestResult_FailedJob(t *testing.T) {
	p := New(WithEngines(map[ir.DeviceClass]sim.Engine{
		ir.DeviceLocalSampling: &fakeEngine{results: []ir.JobResult{{Status: ir.StatusFail}}},
	}))
	bell(t, p, "bell")
	require.NoError(t, p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout))

	rec, err := p.Execution("bell", "")
	require.NoError(t, err)
	assert.Equal(t, ir.StatusFail, rec.Status)

	_, err = p.Result("bell", "")
	require.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "FAIL")
}

func TestCounts_NoCountsNamesResolvedDevice(t *testing.T) {
	p := New()
	bell(t, p, "bell")
	require.NoError(t, p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout, WithShots(1)))

	_, err := p.Counts("bell", "")
	require.True(t, IsNotFound(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, DeviceLocalQASM, e.Device)
	assert.Equal(t, "bell", e.Circuit)
}

func TestQueries_NotFound(t *testing.T) {
	p := programWithCounts(t, ir.Counts{"00": 1})

	_, err := p.Execution("ghost", "")
	assert.True(t, IsNotFound(err))

	_, err = p.Execution("bell", "ibmqx2")
	assert.True(t, IsNotFound(err))

	_, err = p.CompiledQASM("bell", "ibmqx2")
	assert.True(t, IsNotFound(err))
}

func TestCompiledQASM(t *testing.T) {
	p := programWithCounts(t, ir.Counts{"00": 1})

	src, err := p.CompiledQASM("bell", DeviceLocalQASM)
	require.NoError(t, err)
	assert.Contains(t, src, "u2(0,pi) q[0];")
	assert.Contains(t, src, "measure q[1] -> c[1];")
}
