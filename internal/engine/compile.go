package engine

import (
	"errors"
	"log/slog"

	"github.com/roach88/qprog/internal/compiler"
	"github.com/roach88/qprog/internal/ir"
)

// Compile defaults.
const (
	DefaultShots      = 1024
	DefaultMaxCredits = 3
)

type compileConfig struct {
	shots       int
	maxCredits  int
	basisGates  []string
	couplingMap ir.CouplingMap
	seed        *int64
}

// CompileOption configures one Compile call.
type CompileOption func(*compileConfig)

// WithShots sets the number of shots per job. Default: 1024.
func WithShots(n int) CompileOption {
	return func(c *compileConfig) { c.shots = n }
}

// WithMaxCredits sets the credit limit per job. Default: 3.
func WithMaxCredits(n int) CompileOption {
	return func(c *compileConfig) { c.maxCredits = n }
}

// WithBasisGates sets the target basis. Default: u1,u2,u3,cx,id.
func WithBasisGates(gates ...string) CompileOption {
	return func(c *compileConfig) { c.basisGates = append([]string(nil), gates...) }
}

// WithCouplingMap enables the mapping passes for the given device topology.
func WithCouplingMap(m ir.CouplingMap) CompileOption {
	return func(c *compileConfig) { c.couplingMap = m.Clone() }
}

// WithSeed pins the seed of local jobs. Without it each local job gets a
// fresh seed from the Program's SeedSource.
func WithSeed(seed int64) CompileOption {
	return func(c *compileConfig) { c.seed = &seed }
}

// Compile compiles the named circuits for device and queues the jobs.
//
// The call is atomic: if any name is missing or any circuit fails to
// compile, nothing is queued. Jobs already queued for other devices are
// left untouched.
func (p *Program) Compile(names []string, device string, opts ...CompileOption) error {
	if len(names) == 0 {
		return &Error{Code: ErrCodeNotFound, Message: "no circuits to compile", Device: device}
	}
	if device == "" {
		device = DefaultDevice
	}
	cfg := compileConfig{shots: DefaultShots, maxCredits: DefaultMaxCredits}
	for _, opt := range opts {
		opt(&cfg)
	}

	circuits := make([]*ir.Circuit, len(names))
	for i, name := range names {
		entry, err := p.catalog.get(name)
		if err != nil {
			return err
		}
		circuits[i] = entry.circuit
	}

	target := compiler.Target{
		Class:       p.DeviceClass(device),
		Shots:       cfg.shots,
		MaxCredits:  cfg.maxCredits,
		BasisGates:  cfg.basisGates,
		CouplingMap: cfg.couplingMap,
		Seed:        cfg.seed,
	}
	jobs := make([]ir.CompiledJob, 0, len(circuits))
	for _, circuit := range circuits {
		job, err := p.compiler.Compile(circuit, target)
		if err != nil {
			return compilationError(circuit.Name, device, err)
		}
		jobs = append(jobs, *job)
	}

	p.queue.Append(device, jobs...)
	slog.Debug("circuits compiled", "device", device, "class", target.Class.String(), "count", len(jobs))
	return nil
}

func compilationError(circuit, device string, err error) *Error {
	e := &Error{
		Code:    ErrCodeCompilation,
		Message: "compilation failed",
		Circuit: circuit,
		Device:  device,
		Err:     err,
	}
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		e.Details = map[string]string{"stage": ce.Stage}
	}
	return e
}
