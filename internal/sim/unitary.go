package sim

import (
	"context"
	"fmt"

	"github.com/roach88/qprog/internal/ir"
)

// MaxUnitaryQubits bounds the size of the matrix a unitary job may produce.
const MaxUnitaryQubits = 10

// UnitaryEngine computes the full unitary of each job, one basis column at
// a time. Measurements and barriers are ignored; resets and classically
// conditioned gates fail the job.
type UnitaryEngine struct{}

var _ Engine = UnitaryEngine{}

// Run implements Engine.
func (e UnitaryEngine) Run(ctx context.Context, jobs []ir.CompiledJob) ([]ir.JobResult, error) {
	return runBatch(ctx, "unitary", jobs, e.runJob)
}

func (UnitaryEngine) runJob(ctx context.Context, job ir.CompiledJob) (*ir.Result, error) {
	form, err := localForm(job)
	if err != nil {
		return nil, err
	}
	u, err := Unitary(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", job.Circuit, err)
	}
	return &ir.Result{Data: ir.ResultData{Unitary: u}}, nil
}

// Unitary returns the matrix implemented by form. Entry [i][j] is the
// amplitude of |i> after applying the circuit to |j>.
func Unitary(ctx context.Context, form *ir.LocalForm) (ir.Matrix, error) {
	if form.NumQubits > MaxUnitaryQubits {
		return nil, fmt.Errorf("%d qubits exceed the unitary limit of %d", form.NumQubits, MaxUnitaryQubits)
	}
	for _, op := range form.Ops {
		if op.Cond != nil {
			return nil, fmt.Errorf("classically conditioned %q is not unitary", op.Name)
		}
		if op.Name == ir.GateReset {
			return nil, fmt.Errorf("reset is not unitary")
		}
	}

	dim := 1 << form.NumQubits
	u := make(ir.Matrix, dim)
	for i := range u {
		u[i] = make([]complex128, dim)
	}
	for col := 0; col < dim; col++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err := NewBasisState(form.NumQubits, col)
		if err != nil {
			return nil, err
		}
		for _, op := range form.Ops {
			if op.Name == ir.GateMeasure || op.Name == ir.GateBarrier {
				continue
			}
			if err := applyUnitary(state, op); err != nil {
				return nil, err
			}
		}
		for row, a := range state.amps {
			u[row][col] = a
		}
	}
	return u, nil
}
