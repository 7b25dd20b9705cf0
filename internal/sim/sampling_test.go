package sim

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
)

func op(name string, qubits ...int) ir.Op {
	return ir.Op{Name: name, Qubits: qubits}
}

func measure(q, c int) ir.Op {
	return ir.Op{Name: ir.GateMeasure, Qubits: []int{q}, Clbits: []int{c}}
}

func localJob(name string, shots int, seed int64, form *ir.LocalForm) ir.CompiledJob {
	return ir.CompiledJob{
		Circuit: name,
		Class:   ir.DeviceLocalSampling,
		Local:   form,
		Shots:   shots,
		Seed:    &seed,
	}
}

func bellForm() *ir.LocalForm {
	return &ir.LocalForm{
		NumQubits: 2,
		NumClbits: 2,
		Ops:       []ir.Op{op("h", 0), op("cx", 0, 1), measure(0, 0), measure(1, 1)},
	}
}

func TestSampling_BellCountsSumToShots(t *testing.T) {
	results, err := SamplingEngine{}.Run(context.Background(), []ir.CompiledJob{localJob("bell", 500, 1, bellForm())})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, ir.StatusCompleted, res.Status)
	require.NotNil(t, res.Result)
	counts := res.Result.Data.Counts
	assert.Equal(t, 500, counts.Total())
	for key := range counts {
		assert.Contains(t, []string{"00", "11"}, key)
	}
	assert.Greater(t, counts["00"], 0)
	assert.Greater(t, counts["11"], 0)
}

func TestSampling_BitOrderHighestClbitFirst(t *testing.T) {
	form := &ir.LocalForm{NumQubits: 2, NumClbits: 3, Ops: []ir.Op{op("x", 0), measure(0, 0), measure(1, 1)}}

	results, err := SamplingEngine{}.Run(context.Background(), []ir.CompiledJob{localJob("x", 10, 3, form)})
	require.NoError(t, err)
	assert.Equal(t, ir.Counts{"001": 10}, results[0].Result.Data.Counts)
}

func TestSampling_ConditionalGate(t *testing.T) {
	form := &ir.LocalForm{
		NumQubits: 2,
		NumClbits: 2,
		Ops: []ir.Op{
			op("x", 0),
			measure(0, 0),
			{Name: "x", Qubits: []int{1}, Cond: &ir.OpCondition{Offset: 0, Width: 2, Value: 1}},
			measure(1, 1),
		},
	}

	results, err := SamplingEngine{}.Run(context.Background(), []ir.CompiledJob{localJob("cond", 4, 9, form)})
	require.NoError(t, err)
	assert.Equal(t, ir.Counts{"11": 4}, results[0].Result.Data.Counts)
}

func TestSampling_SeedReproducesCounts(t *testing.T) {
	run := func(seed int64) ir.Counts {
		results, err := SamplingEngine{}.Run(context.Background(), []ir.CompiledJob{localJob("bell", 200, seed, bellForm())})
		require.NoError(t, err)
		return results[0].Result.Data.Counts
	}

	assert.Equal(t, run(1234), run(1234))
}

func TestSampling_SingleShotReturnsClassicalState(t *testing.T) {
	form := &ir.LocalForm{NumQubits: 1, NumClbits: 1, Ops: []ir.Op{op("x", 0), measure(0, 0)}}

	results, err := SamplingEngine{}.Run(context.Background(), []ir.CompiledJob{localJob("one", 1, 5, form)})
	require.NoError(t, err)

	data := results[0].Result.Data
	assert.Nil(t, data.Counts)
	require.NotNil(t, data.ClassicalState)
	assert.Equal(t, uint64(1), *data.ClassicalState)
}

func TestSampling_IsolatesJobFailures(t *testing.T) {
	broken := localJob("broken", 10, 1, &ir.LocalForm{NumQubits: 1, Ops: []ir.Op{op("warp", 0)}})
	missing := ir.CompiledJob{Circuit: "missing", Class: ir.DeviceLocalSampling, Shots: 10}
	good := localJob("good", 10, 1, bellForm())

	results, err := SamplingEngine{}.Run(context.Background(), []ir.CompiledJob{broken, good, missing})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, ir.JobResult{Status: ir.StatusFail}, results[0])
	assert.Equal(t, ir.StatusCompleted, results[1].Status)
	assert.Equal(t, 10, results[1].Result.Data.Counts.Total())
	assert.Equal(t, ir.JobResult{Status: ir.StatusFail}, results[2])
}

func TestSampling_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SamplingEngine{}.Run(ctx, []ir.CompiledJob{localJob("bell", 10, 1, bellForm())})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTrial_Reset(t *testing.T) {
	form := &ir.LocalForm{
		NumQubits: 1,
		NumClbits: 1,
		Ops:       []ir.Op{op("h", 0), op(ir.GateReset, 0), measure(0, 0)},
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		state, err := RunTrial(form, rng)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), state)
	}
}

func TestBitstring(t *testing.T) {
	assert.Equal(t, "0101", Bitstring(5, 4))
	assert.Equal(t, "11", Bitstring(3, 2))
	assert.Equal(t, "0", Bitstring(0, 0))
}
