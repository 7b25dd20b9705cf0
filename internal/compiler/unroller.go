package compiler

import (
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/roach88/qprog/internal/ir"
)

// Unroller translates circuits into a target basis.
type Unroller interface {
	// Unroll rewrites every gate of c into gates named in basis.
	Unroll(c *ir.Circuit, basis []string) (*ir.Circuit, error)

	// Expand flattens a basis circuit into the execution-ready form used by
	// local engines. Gates outside basis are rejected.
	Expand(c *ir.Circuit, basis []string) (*ir.LocalForm, error)
}

// expansion rewrites one gate in terms of simpler gates. q holds the gate's
// qubits in argument order.
type expansion func(p []float64, q []ir.Bit) []ir.Gate

type rule struct {
	params int
	qubits int
	expand expansion
}

func g(name string, params []float64, qubits ...ir.Bit) ir.Gate {
	return ir.Gate{Name: name, Params: params, Qubits: qubits}
}

func p(v ...float64) []float64 { return v }

// standardRules decompose the qelib1 gate library down to u3 and cx.
var standardRules = map[string]rule{
	"U":  {3, 1, func(a []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u3", p(a[0], a[1], a[2]), q[0])} }},
	"CX": {0, 2, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("cx", nil, q[0], q[1])} }},
	"u1": {1, 1, func(a []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u3", p(0, 0, a[0]), q[0])} }},
	"u2": {2, 1, func(a []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u3", p(math.Pi/2, a[0], a[1]), q[0])} }},
	"id": {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u3", p(0, 0, 0), q[0])} }},
	"x":  {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u3", p(math.Pi, 0, math.Pi), q[0])} }},
	"y": {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{g("u3", p(math.Pi, math.Pi/2, math.Pi/2), q[0])}
	}},
	"z":   {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u1", p(math.Pi), q[0])} }},
	"h":   {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u2", p(0, math.Pi), q[0])} }},
	"s":   {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u1", p(math.Pi/2), q[0])} }},
	"sdg": {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u1", p(-math.Pi/2), q[0])} }},
	"t":   {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u1", p(math.Pi/4), q[0])} }},
	"tdg": {0, 1, func(_ []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u1", p(-math.Pi/4), q[0])} }},
	"rx": {1, 1, func(a []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{g("u3", p(a[0], -math.Pi/2, math.Pi/2), q[0])}
	}},
	"ry": {1, 1, func(a []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u3", p(a[0], 0, 0), q[0])} }},
	"rz": {1, 1, func(a []float64, q []ir.Bit) []ir.Gate { return []ir.Gate{g("u1", p(a[0]), q[0])} }},
	"cz": {0, 2, func(_ []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{g("h", nil, q[1]), g("cx", nil, q[0], q[1]), g("h", nil, q[1])}
	}},
	"cy": {0, 2, func(_ []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{g("sdg", nil, q[1]), g("cx", nil, q[0], q[1]), g("s", nil, q[1])}
	}},
	"swap": {0, 2, func(_ []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{g("cx", nil, q[0], q[1]), g("cx", nil, q[1], q[0]), g("cx", nil, q[0], q[1])}
	}},
	"ch": {0, 2, func(_ []float64, q []ir.Bit) []ir.Gate {
		a, b := q[0], q[1]
		return []ir.Gate{
			g("h", nil, b), g("sdg", nil, b), g("cx", nil, a, b), g("h", nil, b), g("t", nil, b),
			g("cx", nil, a, b), g("t", nil, b), g("h", nil, b), g("s", nil, b), g("x", nil, b), g("s", nil, a),
		}
	}},
	"crz": {1, 2, func(a []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{
			g("u1", p(a[0]/2), q[1]), g("cx", nil, q[0], q[1]),
			g("u1", p(-a[0]/2), q[1]), g("cx", nil, q[0], q[1]),
		}
	}},
	"cu1": {1, 2, func(a []float64, q []ir.Bit) []ir.Gate {
		return []ir.Gate{
			g("u1", p(a[0]/2), q[0]), g("cx", nil, q[0], q[1]),
			g("u1", p(-a[0]/2), q[1]), g("cx", nil, q[0], q[1]), g("u1", p(a[0]/2), q[1]),
		}
	}},
	"ccx": {0, 3, func(_ []float64, q []ir.Bit) []ir.Gate {
		a, b, c := q[0], q[1], q[2]
		return []ir.Gate{
			g("h", nil, c), g("cx", nil, b, c), g("tdg", nil, c), g("cx", nil, a, c),
			g("t", nil, c), g("cx", nil, b, c), g("tdg", nil, c), g("cx", nil, a, c),
			g("t", nil, b), g("t", nil, c), g("h", nil, c), g("cx", nil, a, b),
			g("t", nil, a), g("tdg", nil, b), g("cx", nil, a, b),
		}
	}},
}

// passThrough names are never unrolled.
var passThrough = mapset.NewSet(ir.GateMeasure, ir.GateReset, ir.GateBarrier)

// maxUnrollDepth bounds rule recursion.
const maxUnrollDepth = 16

// BasisUnroller is the default Unroller over the qelib1 gate library.
type BasisUnroller struct{}

// Unroll implements Unroller.
func (BasisUnroller) Unroll(c *ir.Circuit, basis []string) (*ir.Circuit, error) {
	target := mapset.NewSet(basis...)
	out := c.Clone()
	out.Gates = make([]ir.Gate, 0, len(c.Gates))
	for _, gate := range c.Gates {
		if err := ir.CheckGate(gate); err != nil {
			return nil, fmt.Errorf("unroll %q: %w", c.Name, err)
		}
		expanded, err := unrollGate(gate, target, 0)
		if err != nil {
			return nil, fmt.Errorf("unroll %q: %w", c.Name, err)
		}
		out.Gates = append(out.Gates, expanded...)
	}
	return out, nil
}

func unrollGate(gate ir.Gate, basis mapset.Set[string], depth int) ([]ir.Gate, error) {
	if basis.Contains(gate.Name) || passThrough.Contains(gate.Name) {
		return []ir.Gate{gate}, nil
	}
	if depth >= maxUnrollDepth {
		return nil, fmt.Errorf("gate %q: unroll depth exceeded", gate.Name)
	}
	r, ok := standardRules[gate.Name]
	if !ok {
		return nil, fmt.Errorf("gate %q cannot be expressed in basis %v", gate.Name, basis.ToSlice())
	}
	if len(gate.Params) != r.params || len(gate.Qubits) != r.qubits {
		return nil, fmt.Errorf("gate %q: want %d params and %d qubits, got %d and %d",
			gate.Name, r.params, r.qubits, len(gate.Params), len(gate.Qubits))
	}

	var out []ir.Gate
	for _, sub := range r.expand(gate.Params, gate.Qubits) {
		if gate.Condition != nil {
			cond := *gate.Condition
			sub.Condition = &cond
		}
		expanded, err := unrollGate(sub, basis, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// Expand implements Unroller.
func (BasisUnroller) Expand(c *ir.Circuit, basis []string) (*ir.LocalForm, error) {
	target := mapset.NewSet(basis...)
	form := &ir.LocalForm{NumQubits: c.NumQubits(), NumClbits: c.NumClbits()}
	for _, gate := range c.Gates {
		if gate.Name == ir.GateBarrier {
			continue
		}
		if !target.Contains(gate.Name) && !passThrough.Contains(gate.Name) {
			return nil, fmt.Errorf("expand %q: gate %q is not in basis", c.Name, gate.Name)
		}
		op := ir.Op{Name: gate.Name, Params: append([]float64(nil), gate.Params...)}
		for _, q := range gate.Qubits {
			idx, ok := c.QubitIndex(q)
			if !ok {
				return nil, fmt.Errorf("expand %q: unknown qubit %s", c.Name, q)
			}
			op.Qubits = append(op.Qubits, idx)
		}
		for _, b := range gate.Clbits {
			idx, ok := c.ClbitIndex(b)
			if !ok {
				return nil, fmt.Errorf("expand %q: unknown clbit %s", c.Name, b)
			}
			op.Clbits = append(op.Clbits, idx)
		}
		if gate.Condition != nil {
			offset, width, ok := c.ClassicalSpan(gate.Condition.Register)
			if !ok {
				return nil, fmt.Errorf("expand %q: unknown creg %q", c.Name, gate.Condition.Register)
			}
			op.Cond = &ir.OpCondition{Offset: offset, Width: width, Value: gate.Condition.Value}
		}
		form.Ops = append(form.Ops, op)
	}
	return form, nil
}
