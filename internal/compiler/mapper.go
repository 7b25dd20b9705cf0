package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/qprog/internal/ir"
)

// PhysicalRegister names the single quantum register of a mapped circuit.
const PhysicalRegister = "q"

// Layout maps virtual qubits (flat declaration-order indices) to physical
// qubits.
type Layout map[int]int

// Mapper rewrites basis circuits to respect a device coupling map. The
// passes run in the order SwapMapper, re-unroll, DirectionMapper,
// CXCancellation, Optimize1Q.
type Mapper interface {
	SwapMapper(c *ir.Circuit, coupling *Coupling) (*ir.Circuit, Layout, error)
	DirectionMapper(c *ir.Circuit, coupling *Coupling) (*ir.Circuit, error)
	CXCancellation(c *ir.Circuit) *ir.Circuit
	Optimize1Q(c *ir.Circuit) (*ir.Circuit, error)
}

// CouplingMapper is the default Mapper.
type CouplingMapper struct{}

// SwapMapper places virtual qubit i on physical qubit i and inserts swap
// gates along shortest paths until every two-qubit gate acts on coupled
// qubits. The returned circuit addresses a single register of the device's
// physical size; the returned layout is the initial placement.
func (CouplingMapper) SwapMapper(c *ir.Circuit, coupling *Coupling) (*ir.Circuit, Layout, error) {
	size := coupling.Size()
	if c.NumQubits() > size {
		return nil, nil, fmt.Errorf("map %q: %d qubits do not fit on %d physical qubits", c.Name, c.NumQubits(), size)
	}

	initial := make(Layout, c.NumQubits())
	v2p := make([]int, c.NumQubits())
	p2v := make(map[int]int, c.NumQubits())
	for v := range v2p {
		initial[v] = v
		v2p[v] = v
		p2v[v] = v
	}

	out, err := physicalShell(c, size)
	if err != nil {
		return nil, nil, err
	}
	phys := func(v int) ir.Bit { return ir.Bit{Register: PhysicalRegister, Index: v2p[v]} }

	for _, gate := range c.Gates {
		virt := make([]int, len(gate.Qubits))
		for i, q := range gate.Qubits {
			idx, ok := c.QubitIndex(q)
			if !ok {
				return nil, nil, fmt.Errorf("map %q: unknown qubit %s", c.Name, q)
			}
			virt[i] = idx
		}

		if len(virt) == 2 && gate.Name != ir.GateBarrier {
			a, b := v2p[virt[0]], v2p[virt[1]]
			if !coupling.Adjacent(a, b) {
				path := coupling.ShortestPath(a, b)
				if path == nil {
					return nil, nil, fmt.Errorf("map %q: no path between physical qubits %d and %d", c.Name, a, b)
				}
				for i := 0; i < len(path)-2; i++ {
					x, y := path[i], path[i+1]
					out.Gates = append(out.Gates, ir.Gate{
						Name:   "swap",
						Qubits: []ir.Bit{{Register: PhysicalRegister, Index: x}, {Register: PhysicalRegister, Index: y}},
					})
					vx, okx := p2v[x]
					vy, oky := p2v[y]
					delete(p2v, x)
					delete(p2v, y)
					if okx {
						v2p[vx] = y
						p2v[y] = vx
					}
					if oky {
						v2p[vy] = x
						p2v[x] = vy
					}
				}
			}
		} else if len(virt) > 2 && gate.Name != ir.GateBarrier {
			return nil, nil, fmt.Errorf("map %q: gate %q acts on %d qubits", c.Name, gate.Name, len(virt))
		}

		mapped := ir.Gate{
			Name:   gate.Name,
			Params: append([]float64(nil), gate.Params...),
			Clbits: append([]ir.Bit(nil), gate.Clbits...),
		}
		for _, v := range virt {
			mapped.Qubits = append(mapped.Qubits, phys(v))
		}
		if gate.Condition != nil {
			cond := *gate.Condition
			mapped.Condition = &cond
		}
		out.Gates = append(out.Gates, mapped)
	}
	return out, initial, nil
}

// physicalShell returns an empty circuit with c's classical registers and a
// single physical quantum register.
func physicalShell(c *ir.Circuit, size int) (*ir.Circuit, error) {
	out := ir.NewCircuit(c.Name)
	qr, err := ir.NewRegister(ir.KindQuantum, PhysicalRegister, size)
	if err != nil {
		return nil, err
	}
	if err := out.AddRegister(qr); err != nil {
		return nil, err
	}
	for _, cr := range c.ClassicalRegisters {
		if err := out.AddRegister(cr); err != nil {
			return nil, fmt.Errorf("map %q: %w", c.Name, err)
		}
	}
	return out, nil
}

// DirectionMapper flips cx gates that run against a directed edge by
// conjugating with Hadamards on both qubits.
func (CouplingMapper) DirectionMapper(c *ir.Circuit, coupling *Coupling) (*ir.Circuit, error) {
	out := c.Clone()
	out.Gates = out.Gates[:0:0]
	for _, gate := range c.Gates {
		if gate.Name != "cx" {
			out.Gates = append(out.Gates, gate)
			continue
		}
		a, b := gate.Qubits[0].Index, gate.Qubits[1].Index
		switch {
		case coupling.HasEdge(a, b):
			out.Gates = append(out.Gates, gate)
		case coupling.HasEdge(b, a):
			out.Gates = append(out.Gates, flipCX(gate)...)
		default:
			return nil, fmt.Errorf("direction %q: cx %s,%s is not on a coupling edge", c.Name, gate.Qubits[0], gate.Qubits[1])
		}
	}
	return out, nil
}

func flipCX(gate ir.Gate) []ir.Gate {
	a, b := gate.Qubits[0], gate.Qubits[1]
	h := func(q ir.Bit) ir.Gate {
		return ir.Gate{Name: "u2", Params: []float64{0, math.Pi}, Qubits: []ir.Bit{q}, Condition: gate.Condition}
	}
	reversed := ir.Gate{Name: "cx", Qubits: []ir.Bit{b, a}, Condition: gate.Condition}
	return []ir.Gate{h(a), h(b), reversed, h(a), h(b)}
}

// CXCancellation removes adjacent pairs of identical unconditioned cx gates.
// Adjacency is per qubit: the pair may be separated by gates on other qubits.
func (CouplingMapper) CXCancellation(c *ir.Circuit) *ir.Circuit {
	removed := make([]bool, len(c.Gates))
	stacks := make(map[ir.Bit][]int)
	top := func(q ir.Bit) int {
		s := stacks[q]
		if len(s) == 0 {
			return -1
		}
		return s[len(s)-1]
	}

	for i, gate := range c.Gates {
		if gate.Name == "cx" && gate.Condition == nil {
			a, b := gate.Qubits[0], gate.Qubits[1]
			j := top(a)
			if j >= 0 && j == top(b) {
				prev := c.Gates[j]
				if prev.Name == "cx" && prev.Condition == nil && prev.Qubits[0] == a && prev.Qubits[1] == b {
					removed[i], removed[j] = true, true
					stacks[a] = stacks[a][:len(stacks[a])-1]
					stacks[b] = stacks[b][:len(stacks[b])-1]
					continue
				}
			}
		}
		for _, q := range gate.Qubits {
			stacks[q] = append(stacks[q], i)
		}
	}

	out := c.Clone()
	out.Gates = out.Gates[:0]
	for i, gate := range c.Gates {
		if !removed[i] {
			out.Gates = append(out.Gates, gate)
		}
	}
	return out
}
