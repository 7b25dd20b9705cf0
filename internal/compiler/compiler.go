package compiler

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/qasm"
)

// CompileError reports a failure in one compilation stage of one circuit.
type CompileError struct {
	Circuit string
	Stage   string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %s: %v", e.Circuit, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// SeedSource supplies seeds for local jobs compiled without an explicit one.
type SeedSource interface {
	NextSeed() int64
}

// RandomSeeds draws seeds from the runtime's random source.
type RandomSeeds struct{}

// NextSeed implements SeedSource.
func (RandomSeeds) NextSeed() int64 {
	return rand.Int64()
}

// Target describes what a circuit is compiled for.
type Target struct {
	Class       ir.DeviceClass
	Shots       int
	MaxCredits  int
	BasisGates  []string
	CouplingMap ir.CouplingMap
	Seed        *int64
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithUnroller replaces the default BasisUnroller.
func WithUnroller(u Unroller) Option {
	return func(c *Compiler) { c.unroller = u }
}

// WithMapper replaces the default CouplingMapper.
func WithMapper(m Mapper) Option {
	return func(c *Compiler) { c.mapper = m }
}

// WithSeedSource replaces the default RandomSeeds.
func WithSeedSource(s SeedSource) Option {
	return func(c *Compiler) { c.seeds = s }
}

// Compiler turns catalog circuits into CompiledJobs.
type Compiler struct {
	unroller Unroller
	mapper   Mapper
	seeds    SeedSource
}

// New creates a Compiler with the default collaborators.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		unroller: BasisUnroller{},
		mapper:   CouplingMapper{},
		seeds:    RandomSeeds{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile translates circ for target. The input circuit is not modified.
func (c *Compiler) Compile(circ *ir.Circuit, target Target) (*ir.CompiledJob, error) {
	basis := target.BasisGates
	if len(basis) == 0 {
		basis = ir.DefaultBasis()
	}
	fail := func(stage string, err error) (*ir.CompiledJob, error) {
		return nil, &CompileError{Circuit: circ.Name, Stage: stage, Err: err}
	}

	out, err := c.unroller.Unroll(circ, basis)
	if err != nil {
		return fail("unroll", err)
	}

	if target.CouplingMap != nil {
		out, err = c.mapCircuit(out, basis, target.CouplingMap)
		if err != nil {
			return fail("map", err)
		}
	}

	job := &ir.CompiledJob{
		Circuit:        circ.Name,
		Class:          target.Class,
		CompiledSource: qasm.Emit(out),
		CouplingMap:    target.CouplingMap.Clone(),
		BasisGates:     append([]string(nil), basis...),
		Shots:          target.Shots,
		MaxCredits:     target.MaxCredits,
	}

	if target.Class.IsLocal() {
		parsed, err := qasm.Parse(circ.Name, job.CompiledSource)
		if err != nil {
			return fail("reparse", err)
		}
		job.Local, err = c.unroller.Expand(parsed, basis)
		if err != nil {
			return fail("expand", err)
		}
		seed := c.seeds.NextSeed()
		if target.Seed != nil {
			seed = *target.Seed
		}
		job.Seed = &seed
	} else if target.Seed != nil {
		seed := *target.Seed
		job.Seed = &seed
	}

	if err := job.Validate(); err != nil {
		return fail("validate", err)
	}
	return job, nil
}

// mapCircuit sequences the Mapper passes in their fixed order.
func (c *Compiler) mapCircuit(circ *ir.Circuit, basis []string, m ir.CouplingMap) (*ir.Circuit, error) {
	coupling, err := NewCoupling(m)
	if err != nil {
		return nil, err
	}
	slog.Debug("pre-mapping properties", "circuit", circ.Name, "properties", circ.PropertySummary())

	mapped, layout, err := c.mapper.SwapMapper(circ, coupling)
	if err != nil {
		return nil, err
	}
	slog.Debug("initial layout", "circuit", circ.Name, "layout", layout)

	if mapped, err = c.unroller.Unroll(mapped, basis); err != nil {
		return nil, err
	}
	if mapped, err = c.mapper.DirectionMapper(mapped, coupling); err != nil {
		return nil, err
	}
	mapped = c.mapper.CXCancellation(mapped)
	if mapped, err = c.mapper.Optimize1Q(mapped); err != nil {
		return nil, err
	}

	slog.Debug("post-mapping properties", "circuit", circ.Name, "properties", mapped.PropertySummary())
	return mapped, nil
}
