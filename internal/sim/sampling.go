package sim

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/roach88/qprog/internal/ir"
)

// MaxClbits is the widest classical state a trial can record.
const MaxClbits = 64

// seedStream separates the two PCG words derived from one job seed.
const seedStream = 0x9e3779b97f4a7c15

// SamplingEngine estimates output distributions by repeated trials.
//
// Every trial draws its own seed, but the trial seeds are derived from the
// job seed, so a pinned job seed reproduces the whole counts table.
type SamplingEngine struct{}

var _ Engine = SamplingEngine{}

// Run implements Engine.
func (e SamplingEngine) Run(ctx context.Context, jobs []ir.CompiledJob) ([]ir.JobResult, error) {
	return runBatch(ctx, "sampling", jobs, e.runJob)
}

func (SamplingEngine) runJob(ctx context.Context, job ir.CompiledJob) (*ir.Result, error) {
	form, err := localForm(job)
	if err != nil {
		return nil, err
	}
	if form.NumClbits > MaxClbits {
		return nil, fmt.Errorf("job %q: %d classical bits exceed %d", job.Circuit, form.NumClbits, MaxClbits)
	}

	seed := rand.Uint64()
	if job.Seed != nil {
		seed = uint64(*job.Seed)
	}
	trials := rand.New(rand.NewPCG(seed, seed^seedStream))
	next := func() *rand.Rand {
		return rand.New(rand.NewPCG(trials.Uint64(), trials.Uint64()))
	}

	if job.Shots == 1 {
		state, err := RunTrial(form, next())
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", job.Circuit, err)
		}
		return &ir.Result{Data: ir.ResultData{ClassicalState: &state}}, nil
	}

	counts := make(ir.Counts)
	for i := 0; i < job.Shots; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err := RunTrial(form, next())
		if err != nil {
			return nil, fmt.Errorf("job %q: trial %d: %w", job.Circuit, i, err)
		}
		counts[Bitstring(state, form.NumClbits)]++
	}
	return &ir.Result{Data: ir.ResultData{Counts: counts}}, nil
}

// RunTrial simulates form once and returns the final classical register,
// with clbit i in bit i.
func RunTrial(form *ir.LocalForm, rng *rand.Rand) (uint64, error) {
	state, err := NewState(form.NumQubits)
	if err != nil {
		return 0, err
	}
	var creg uint64
	for _, op := range form.Ops {
		if !conditionHolds(op.Cond, creg) {
			continue
		}
		switch op.Name {
		case ir.GateMeasure:
			if len(op.Qubits) != 1 || len(op.Clbits) != 1 {
				return 0, fmt.Errorf("measure: want 1 qubit and 1 clbit")
			}
			bit := uint64(1) << op.Clbits[0]
			if state.measure(op.Qubits[0], rng) == 1 {
				creg |= bit
			} else {
				creg &^= bit
			}
		case ir.GateReset:
			for _, q := range op.Qubits {
				state.reset(q, rng)
			}
		case ir.GateBarrier:
		default:
			if err := applyUnitary(state, op); err != nil {
				return 0, err
			}
		}
	}
	return creg, nil
}

// Bitstring renders a classical state as a width-bit binary string, highest
// clbit first.
func Bitstring(state uint64, width int) string {
	return fmt.Sprintf("%0*b", width, state)
}
