package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/qasm"
)

// catalogEntry is one named circuit and its per-device execution records.
type catalogEntry struct {
	circuit    *ir.Circuit
	executions map[string]ir.ExecutionRecord
}

// catalog maps NFC-normalized circuit names to entries, remembering
// insertion order for listings.
type catalog struct {
	entries map[string]*catalogEntry
	order   []string
}

func newCatalog() *catalog {
	return &catalog{entries: make(map[string]*catalogEntry)}
}

// put stores circuit under name, replacing any earlier circuit and its
// execution records.
func (c *catalog) put(name string, circuit *ir.Circuit) *ir.Circuit {
	key := ir.NormalizeName(name)
	circuit.Name = key
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = &catalogEntry{circuit: circuit, executions: make(map[string]ir.ExecutionRecord)}
	return circuit
}

func (c *catalog) get(name string) (*catalogEntry, error) {
	entry, ok := c.entries[ir.NormalizeName(name)]
	if !ok {
		return nil, NewNotFoundError("circuit", name)
	}
	return entry, nil
}

// record overwrites the execution record for (rec.Circuit, rec.Device).
func (c *catalog) record(rec ir.ExecutionRecord) error {
	entry, err := c.get(rec.Circuit)
	if err != nil {
		return err
	}
	entry.executions[rec.Device] = rec
	return nil
}

// CreateCircuit creates an empty circuit over registers from the register
// store, referenced by name.
func (p *Program) CreateCircuit(name string, qregs, cregs []string) (*ir.Circuit, error) {
	circuit := ir.NewCircuit(name)
	for _, r := range qregs {
		reg, err := p.QuantumRegister(r)
		if err != nil {
			return nil, err
		}
		if err := circuit.AddRegister(reg); err != nil {
			return nil, err
		}
	}
	for _, r := range cregs {
		reg, err := p.ClassicalRegister(r)
		if err != nil {
			return nil, err
		}
		if err := circuit.AddRegister(reg); err != nil {
			return nil, err
		}
	}
	return p.catalog.put(name, circuit), nil
}

// AddCircuit stores a prebuilt circuit under name. The catalog keeps its own
// copy.
func (p *Program) AddCircuit(name string, circuit *ir.Circuit) *ir.Circuit {
	return p.catalog.put(name, circuit.Clone())
}

// Circuit returns the catalog circuit for name. Callers may append gates to
// it; changes are visible to later compiles.
func (p *Program) Circuit(name string) (*ir.Circuit, error) {
	entry, err := p.catalog.get(name)
	if err != nil {
		return nil, err
	}
	return entry.circuit, nil
}

// CircuitNames lists catalog circuits in insertion order.
func (p *Program) CircuitNames() []string {
	return append([]string(nil), p.catalog.order...)
}

// LoadQASM parses OpenQASM source into the catalog under name.
func (p *Program) LoadQASM(name, source string) (*ir.Circuit, error) {
	circuit, err := qasm.Parse(name, source)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	slog.Debug("circuit loaded", "name", name, "gates", len(circuit.Gates))
	return p.catalog.put(name, circuit), nil
}

// LoadQASMFile parses an OpenQASM file into the catalog. An empty name
// defaults to path.
func (p *Program) LoadQASMFile(name, path string) (*ir.Circuit, error) {
	if name == "" {
		name = path
	}
	circuit, err := qasm.ParseFile(name, path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	slog.Debug("circuit loaded", "name", name, "path", path, "gates", len(circuit.Gates))
	return p.catalog.put(name, circuit), nil
}

// CircuitQASM returns the uncompiled OpenQASM source of a catalog circuit.
func (p *Program) CircuitQASM(name string) (string, error) {
	entry, err := p.catalog.get(name)
	if err != nil {
		return "", err
	}
	return qasm.Emit(entry.circuit), nil
}

// CircuitQASMs returns CircuitQASM for each name, failing on the first
// missing circuit.
func (p *Program) CircuitQASMs(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		src, err := p.CircuitQASM(name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}
