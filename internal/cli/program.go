package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qprog/internal/config"
	"github.com/roach88/qprog/internal/engine"
	"github.com/roach88/qprog/internal/ir"
)

// ProgramOptions holds the spec-loading and compile flags shared by run,
// queue and validate. Flags override the spec's run block, which overrides
// the engine defaults.
type ProgramOptions struct {
	*RootOptions
	Device     string
	Circuits   []string
	Shots      int
	MaxCredits int
	Seed       int64
}

func (o *ProgramOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Device, "device", "", "target device (default from spec, then "+engine.DefaultDevice+")")
	cmd.Flags().StringSliceVar(&o.Circuits, "circuit", nil, "circuit to compile (repeatable; default all)")
	cmd.Flags().IntVar(&o.Shots, "shots", 0, "shots per circuit")
	cmd.Flags().IntVar(&o.MaxCredits, "max-credits", 0, "credit cap per remote job")
	cmd.Flags().Int64Var(&o.Seed, "seed", 0, "simulator seed")
}

// loadSpec reads the spec at path and applies environment overrides.
func (o *ProgramOptions) loadSpec(path string) (*config.ProgramSpec, error) {
	spec, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	getenv := o.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	spec.ApplyEnv(getenv)
	return spec, nil
}

// newProgram builds a Program and initialises it from spec.
func (o *ProgramOptions) newProgram(spec *config.ProgramSpec, extra ...engine.Option) (*engine.Program, error) {
	opts := append(slices.Clone(extra), o.EngineOptions...)
	p := engine.New(opts...)
	if err := p.InitSpecs(spec); err != nil {
		return nil, err
	}
	return p, nil
}

// compileArgs resolves the circuits, device and compile options for one
// compile call.
func (o *ProgramOptions) compileArgs(cmd *cobra.Command, spec *config.ProgramSpec) ([]string, string, []engine.CompileOption) {
	run := spec.Run
	if run == nil {
		run = &config.RunSpec{}
	}

	names := o.Circuits
	if len(names) == 0 {
		names = run.Circuits
	}
	if len(names) == 0 {
		names = spec.CircuitNames()
	}

	device := firstNonEmpty(o.Device, run.Device, engine.DefaultDevice)

	// An explicit flag wins even when zero; the spec's zero means unset.
	var opts []engine.CompileOption
	switch {
	case cmd.Flags().Changed("shots"):
		opts = append(opts, engine.WithShots(o.Shots))
	case run.Shots > 0:
		opts = append(opts, engine.WithShots(run.Shots))
	}
	switch {
	case cmd.Flags().Changed("max-credits"):
		opts = append(opts, engine.WithMaxCredits(o.MaxCredits))
	case run.MaxCredits > 0:
		opts = append(opts, engine.WithMaxCredits(run.MaxCredits))
	}
	if len(run.BasisGates) > 0 {
		opts = append(opts, engine.WithBasisGates(run.BasisGates...))
	}
	if len(run.CouplingMap) > 0 {
		opts = append(opts, engine.WithCouplingMap(ir.CouplingMap(run.CouplingMap)))
	}
	switch {
	case cmd.Flags().Changed("seed"):
		opts = append(opts, engine.WithSeed(o.Seed))
	case run.Seed != nil:
		opts = append(opts, engine.WithSeed(*run.Seed))
	}
	return names, device, opts
}

// pollTimes returns the wait and timeout for remote polling, from flags
// (seconds), then the spec, then the engine defaults. An explicit
// --timeout 0 gives up on the first RUNNING status.
func pollTimes(cmd *cobra.Command, waitFlag, timeoutFlag int, run *config.RunSpec) (time.Duration, time.Duration, error) {
	if run == nil {
		run = &config.RunSpec{}
	}
	wait := engine.DefaultWait
	switch {
	case cmd.Flags().Changed("wait"):
		if waitFlag <= 0 {
			return 0, 0, fmt.Errorf("--wait must be positive, got %d", waitFlag)
		}
		wait = time.Duration(waitFlag) * time.Second
	case run.Wait > 0:
		wait = time.Duration(run.Wait) * time.Second
	}
	timeout := engine.DefaultTimeout
	switch {
	case cmd.Flags().Changed("timeout"):
		if timeoutFlag < 0 {
			return 0, 0, fmt.Errorf("--timeout must not be negative, got %d", timeoutFlag)
		}
		timeout = time.Duration(timeoutFlag) * time.Second
	case run.Timeout > 0:
		timeout = time.Duration(run.Timeout) * time.Second
	}
	return wait, timeout, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
