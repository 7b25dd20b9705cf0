package ir

import (
	"fmt"
	"slices"
)

// Gate names with special meaning to compilers and simulators.
const (
	GateMeasure = "measure"
	GateReset   = "reset"
	GateBarrier = "barrier"
)

// Condition gates an instruction on a classical register's value (if(c==n)).
type Condition struct {
	Register string `json:"register"`
	Value    uint64 `json:"value"`
}

// Gate is one instruction in a circuit body.
//
// Measurements use Name "measure" with one qubit and one clbit.
type Gate struct {
	Name      string     `json:"name"`
	Params    []float64  `json:"params,omitempty"`
	Qubits    []Bit      `json:"qubits"`
	Clbits    []Bit      `json:"clbits,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

// Circuit is a named gate sequence over declared registers.
type Circuit struct {
	Name               string     `json:"name"`
	QuantumRegisters   []Register `json:"quantum_registers"`
	ClassicalRegisters []Register `json:"classical_registers"`
	Gates              []Gate     `json:"gates"`
}

// NewCircuit creates an empty circuit.
func NewCircuit(name string) *Circuit {
	return &Circuit{Name: name}
}

// AddRegister attaches a register to the circuit.
// Register names must be unique across both kinds.
func (c *Circuit) AddRegister(r Register) error {
	if _, ok := c.register(r.Name); ok {
		return fmt.Errorf("circuit %q: duplicate register %q", c.Name, r.Name)
	}
	switch r.Kind {
	case KindQuantum:
		c.QuantumRegisters = append(c.QuantumRegisters, r)
	case KindClassical:
		c.ClassicalRegisters = append(c.ClassicalRegisters, r)
	default:
		return fmt.Errorf("circuit %q: register %q has invalid kind", c.Name, r.Name)
	}
	return nil
}

func (c *Circuit) register(name string) (Register, bool) {
	for _, r := range c.QuantumRegisters {
		if r.Name == name {
			return r, true
		}
	}
	for _, r := range c.ClassicalRegisters {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// Apply appends a gate acting on the given qubits. Known gates must match
// their signature.
func (c *Circuit) Apply(name string, params []float64, qubits ...Bit) error {
	for _, q := range qubits {
		if _, ok := c.QubitIndex(q); !ok {
			return fmt.Errorf("circuit %q: %s: unknown qubit %s", c.Name, name, q)
		}
	}
	gate := Gate{Name: name, Params: slices.Clone(params), Qubits: slices.Clone(qubits)}
	if err := CheckGate(gate); err != nil {
		return fmt.Errorf("circuit %q: %w", c.Name, err)
	}
	c.Gates = append(c.Gates, gate)
	return nil
}

// Measure appends a measurement of qubit q into classical bit cbit.
func (c *Circuit) Measure(q, cbit Bit) error {
	if _, ok := c.QubitIndex(q); !ok {
		return fmt.Errorf("circuit %q: measure: unknown qubit %s", c.Name, q)
	}
	if _, ok := c.ClbitIndex(cbit); !ok {
		return fmt.Errorf("circuit %q: measure: unknown clbit %s", c.Name, cbit)
	}
	c.Gates = append(c.Gates, Gate{Name: GateMeasure, Qubits: []Bit{q}, Clbits: []Bit{cbit}})
	return nil
}

// NumQubits returns the total qubit count across quantum registers.
func (c *Circuit) NumQubits() int {
	n := 0
	for _, r := range c.QuantumRegisters {
		n += r.Size
	}
	return n
}

// NumClbits returns the total classical bit count across classical registers.
func (c *Circuit) NumClbits() int {
	n := 0
	for _, r := range c.ClassicalRegisters {
		n += r.Size
	}
	return n
}

// QubitIndex flattens a qubit reference into [0, NumQubits).
// Registers are laid out in declaration order.
func (c *Circuit) QubitIndex(b Bit) (int, bool) {
	return flatIndex(c.QuantumRegisters, b)
}

// ClbitIndex flattens a classical bit reference into [0, NumClbits).
func (c *Circuit) ClbitIndex(b Bit) (int, bool) {
	return flatIndex(c.ClassicalRegisters, b)
}

// ClassicalSpan returns the flat offset and width of a classical register.
func (c *Circuit) ClassicalSpan(name string) (offset, width int, ok bool) {
	for _, r := range c.ClassicalRegisters {
		if r.Name == name {
			return offset, r.Size, true
		}
		offset += r.Size
	}
	return 0, 0, false
}

func flatIndex(regs []Register, b Bit) (int, bool) {
	offset := 0
	for _, r := range regs {
		if r.Name == b.Register {
			if b.Index < 0 || b.Index >= r.Size {
				return 0, false
			}
			return offset + b.Index, true
		}
		offset += r.Size
	}
	return 0, false
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{
		Name:               c.Name,
		QuantumRegisters:   slices.Clone(c.QuantumRegisters),
		ClassicalRegisters: slices.Clone(c.ClassicalRegisters),
		Gates:              make([]Gate, len(c.Gates)),
	}
	for i, g := range c.Gates {
		out.Gates[i] = g.clone()
	}
	return out
}

func (g Gate) clone() Gate {
	out := Gate{
		Name:   g.Name,
		Params: slices.Clone(g.Params),
		Qubits: slices.Clone(g.Qubits),
		Clbits: slices.Clone(g.Clbits),
	}
	if g.Condition != nil {
		cond := *g.Condition
		out.Condition = &cond
	}
	return out
}

// PropertySummary reports size and per-gate counts for logging.
func (c *Circuit) PropertySummary() map[string]int {
	summary := map[string]int{
		"size":   len(c.Gates),
		"qubits": c.NumQubits(),
		"clbits": c.NumClbits(),
	}
	for _, g := range c.Gates {
		summary["gate:"+g.Name]++
	}
	return summary
}
