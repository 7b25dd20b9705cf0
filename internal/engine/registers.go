package engine

import (
	"log/slog"

	"github.com/roach88/qprog/internal/ir"
)

// RegisterSpec names a register to create.
type RegisterSpec struct {
	Name string
	Size int
}

// registerStore holds named registers by kind. Creating a register with an
// existing name replaces it.
type registerStore struct {
	quantum   map[string]ir.Register
	classical map[string]ir.Register
}

func newRegisterStore() *registerStore {
	return &registerStore{
		quantum:   make(map[string]ir.Register),
		classical: make(map[string]ir.Register),
	}
}

func (s *registerStore) byKind(kind ir.RegisterKind) map[string]ir.Register {
	if kind == ir.KindQuantum {
		return s.quantum
	}
	return s.classical
}

func (s *registerStore) create(kind ir.RegisterKind, name string, size int) (ir.Register, error) {
	r, err := ir.NewRegister(kind, ir.NormalizeName(name), size)
	if err != nil {
		return ir.Register{}, err
	}
	s.byKind(kind)[r.Name] = r
	slog.Info("register created", "kind", kind.String(), "name", r.Name, "size", r.Size)
	return r, nil
}

func (s *registerStore) lookup(kind ir.RegisterKind, name string) (ir.Register, error) {
	r, ok := s.byKind(kind)[ir.NormalizeName(name)]
	if !ok {
		return ir.Register{}, NewNotFoundError(kind.String(), name)
	}
	return r, nil
}

// CreateQuantumRegister creates (or replaces) a named quantum register.
func (p *Program) CreateQuantumRegister(name string, size int) (ir.Register, error) {
	return p.registers.create(ir.KindQuantum, name, size)
}

// CreateClassicalRegister creates (or replaces) a named classical register.
func (p *Program) CreateClassicalRegister(name string, size int) (ir.Register, error) {
	return p.registers.create(ir.KindClassical, name, size)
}

// CreateQuantumRegisterGroup creates several quantum registers in order.
func (p *Program) CreateQuantumRegisterGroup(specs []RegisterSpec) ([]ir.Register, error) {
	return p.createGroup(ir.KindQuantum, specs)
}

// CreateClassicalRegisterGroup creates several classical registers in order.
func (p *Program) CreateClassicalRegisterGroup(specs []RegisterSpec) ([]ir.Register, error) {
	return p.createGroup(ir.KindClassical, specs)
}

func (p *Program) createGroup(kind ir.RegisterKind, specs []RegisterSpec) ([]ir.Register, error) {
	regs := make([]ir.Register, 0, len(specs))
	for _, spec := range specs {
		r, err := p.registers.create(kind, spec.Name, spec.Size)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, nil
}

// QuantumRegister looks up a quantum register by name.
func (p *Program) QuantumRegister(name string) (ir.Register, error) {
	return p.registers.lookup(ir.KindQuantum, name)
}

// ClassicalRegister looks up a classical register by name.
func (p *Program) ClassicalRegister(name string) (ir.Register, error) {
	return p.registers.lookup(ir.KindClassical, name)
}
