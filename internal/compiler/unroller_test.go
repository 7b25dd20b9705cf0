package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
)

func newCircuit(t *testing.T, name string, qubits, clbits int) *ir.Circuit {
	t.Helper()
	c := ir.NewCircuit(name)
	qr, err := ir.NewRegister(ir.KindQuantum, "q", qubits)
	require.NoError(t, err)
	require.NoError(t, c.AddRegister(qr))
	if clbits > 0 {
		cr, err := ir.NewRegister(ir.KindClassical, "c", clbits)
		require.NoError(t, err)
		require.NoError(t, c.AddRegister(cr))
	}
	return c
}

func q(i int) ir.Bit { return ir.Bit{Register: "q", Index: i} }
func cb(i int) ir.Bit { return ir.Bit{Register: "c", Index: i} }

func gateNames(c *ir.Circuit) []string {
	names := make([]string, len(c.Gates))
	for i, g := range c.Gates {
		names[i] = g.Name
	}
	return names
}

func TestUnroll_HadamardToU2(t *testing.T) {
	c := newCircuit(t, "h", 1, 0)
	require.NoError(t, c.Apply("h", nil, q(0)))

	out, err := BasisUnroller{}.Unroll(c, ir.DefaultBasis())
	require.NoError(t, err)

	require.Len(t, out.Gates, 1)
	assert.Equal(t, "u2", out.Gates[0].Name)
	assert.Equal(t, []float64{0, math.Pi}, out.Gates[0].Params)
	assert.Equal(t, "h", c.Gates[0].Name, "input must not be modified")
}

func TestUnroll_ControlledZ(t *testing.T) {
	c := newCircuit(t, "cz", 2, 0)
	require.NoError(t, c.Apply("cz", nil, q(0), q(1)))

	out, err := BasisUnroller{}.Unroll(c, ir.DefaultBasis())
	require.NoError(t, err)

	assert.Equal(t, []string{"u2", "cx", "u2"}, gateNames(out))
	assert.Equal(t, []ir.Bit{q(1)}, out.Gates[0].Qubits)
	assert.Equal(t, []ir.Bit{q(0), q(1)}, out.Gates[1].Qubits)
}

func TestUnroll_RecursesToNarrowBasis(t *testing.T) {
	c := newCircuit(t, "narrow", 1, 0)
	require.NoError(t, c.Apply("h", nil, q(0)))

	out, err := BasisUnroller{}.Unroll(c, []string{"u3", "cx"})
	require.NoError(t, err)

	require.Len(t, out.Gates, 1)
	assert.Equal(t, "u3", out.Gates[0].Name)
	assert.Equal(t, []float64{math.Pi / 2, 0, math.Pi}, out.Gates[0].Params)
}

func TestUnroll_Toffoli(t *testing.T) {
	c := newCircuit(t, "ccx", 3, 0)
	require.NoError(t, c.Apply("ccx", nil, q(0), q(1), q(2)))

	out, err := BasisUnroller{}.Unroll(c, ir.DefaultBasis())
	require.NoError(t, err)

	assert.Equal(t, 6, out.PropertySummary()["gate:cx"])
	for _, g := range out.Gates {
		assert.Contains(t, ir.DefaultBasis(), g.Name)
	}
}

func TestUnroll_PropagatesCondition(t *testing.T) {
	c := newCircuit(t, "cond", 2, 2)
	c.Gates = append(c.Gates, ir.Gate{
		Name:      "swap",
		Qubits:    []ir.Bit{q(0), q(1)},
		Condition: &ir.Condition{Register: "c", Value: 1},
	})

	out, err := BasisUnroller{}.Unroll(c, ir.DefaultBasis())
	require.NoError(t, err)

	require.Len(t, out.Gates, 3)
	for _, g := range out.Gates {
		require.NotNil(t, g.Condition)
		assert.Equal(t, uint64(1), g.Condition.Value)
	}
	out.Gates[0].Condition.Value = 9
	assert.Equal(t, uint64(1), out.Gates[1].Condition.Value, "conditions must not be shared")
}

func TestUnroll_PassesMeasureThrough(t *testing.T) {
	c := newCircuit(t, "m", 1, 1)
	require.NoError(t, c.Measure(q(0), cb(0)))

	out, err := BasisUnroller{}.Unroll(c, []string{"u3"})
	require.NoError(t, err)
	assert.Equal(t, []string{ir.GateMeasure}, gateNames(out))
}

func TestUnroll_Errors(t *testing.T) {
	tests := []struct {
		name   string
		gate   ir.Gate
		substr string
	}{
		{"unknown gate", ir.Gate{Name: "foo", Qubits: []ir.Bit{q(0)}}, `gate "foo" cannot be expressed`},
		{"wrong params", ir.Gate{Name: "rx", Qubits: []ir.Bit{q(0)}}, "want 1 params"},
		{"wrong qubits", ir.Gate{Name: "cx2", Qubits: []ir.Bit{q(0)}}, "cannot be expressed"},
		{"basis gate arity", ir.Gate{Name: "cx", Qubits: []ir.Bit{q(0)}}, "want 2 qubits, got 1"},
		{"basis gate params", ir.Gate{Name: "u3", Qubits: []ir.Bit{q(0)}}, "want 3 params, got 0"},
		{"repeated qubit", ir.Gate{Name: "cx", Qubits: []ir.Bit{q(1), q(1)}}, "used twice"},
		{"measure without clbit", ir.Gate{Name: ir.GateMeasure, Qubits: []ir.Bit{q(0)}}, "want 1 clbits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCircuit(t, "bad", 2, 0)
			c.Gates = append(c.Gates, tt.gate)

			_, err := BasisUnroller{}.Unroll(c, ir.DefaultBasis())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestExpand_FlatIndices(t *testing.T) {
	c := ir.NewCircuit("flat")
	a, _ := ir.NewRegister(ir.KindQuantum, "a", 1)
	b, _ := ir.NewRegister(ir.KindQuantum, "b", 2)
	x, _ := ir.NewRegister(ir.KindClassical, "x", 1)
	y, _ := ir.NewRegister(ir.KindClassical, "y", 2)
	for _, r := range []ir.Register{a, b, x, y} {
		require.NoError(t, c.AddRegister(r))
	}
	require.NoError(t, c.Apply("cx", nil, a.Bit(0), b.Bit(1)))
	require.NoError(t, c.Measure(b.Bit(1), y.Bit(1)))
	c.Gates = append(c.Gates,
		ir.Gate{Name: ir.GateBarrier, Qubits: []ir.Bit{a.Bit(0), b.Bit(0)}},
		ir.Gate{Name: "u1", Params: []float64{0.5}, Qubits: []ir.Bit{b.Bit(0)}, Condition: &ir.Condition{Register: "y", Value: 2}},
	)

	form, err := BasisUnroller{}.Expand(c, ir.DefaultBasis())
	require.NoError(t, err)

	assert.Equal(t, 3, form.NumQubits)
	assert.Equal(t, 3, form.NumClbits)
	require.Len(t, form.Ops, 3, "barriers are dropped")
	assert.Equal(t, []int{0, 2}, form.Ops[0].Qubits)
	assert.Equal(t, []int{2}, form.Ops[1].Qubits)
	assert.Equal(t, []int{2}, form.Ops[1].Clbits)
	assert.Equal(t, &ir.OpCondition{Offset: 1, Width: 2, Value: 2}, form.Ops[2].Cond)
}

func TestExpand_RejectsGateOutsideBasis(t *testing.T) {
	c := newCircuit(t, "h", 1, 0)
	require.NoError(t, c.Apply("h", nil, q(0)))

	_, err := BasisUnroller{}.Expand(c, ir.DefaultBasis())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `gate "h" is not in basis`)
}
