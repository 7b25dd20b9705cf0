// Package config loads program specs: the registers, circuits, API settings
// and run parameters a Program is initialised from.
//
// Specs are YAML (.yaml, .yml) or CUE (a .cue file or a directory holding a
// CUE package). Environment variables override the API block.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAPIToken = "QPROG_API_TOKEN"
	EnvAPIURL   = "QPROG_API_URL"
)

// ProgramSpec describes a program to initialise.
//
// Either Circuits lists every circuit, or the single-circuit form is used:
// Name plus one QuantumRegisters and one ClassicalRegisters entry.
type ProgramSpec struct {
	// Name names the circuit in the single-circuit form.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// API configures the remote backend.
	API *APISpec `yaml:"api,omitempty" json:"api,omitempty"`

	// Circuits lists circuits with their registers or source.
	Circuits []CircuitSpec `yaml:"circuits,omitempty" json:"circuits,omitempty"`

	// QuantumRegisters is the quantum register of the single-circuit form.
	QuantumRegisters *RegisterSpec `yaml:"quantum_registers,omitempty" json:"quantum_registers,omitempty"`

	// ClassicalRegisters is the classical register of the single-circuit form.
	ClassicalRegisters *RegisterSpec `yaml:"classical_registers,omitempty" json:"classical_registers,omitempty"`

	// Run holds defaults for `qprog run`.
	Run *RunSpec `yaml:"run,omitempty" json:"run,omitempty"`

	// BaseDir resolves relative qasm_file paths. Set by the loaders to the
	// spec's directory.
	BaseDir string `yaml:"-" json:"-"`
}

// APISpec holds remote API credentials.
type APISpec struct {
	Token string `yaml:"token,omitempty" json:"token,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
}

// RegisterSpec names a register and its size.
type RegisterSpec struct {
	Name string `yaml:"name" json:"name"`
	Size int    `yaml:"size" json:"size"`
}

// CircuitSpec describes one circuit. With QASM or QASMFile set the circuit
// (registers included) comes from source; otherwise an empty circuit is
// created over the listed registers.
type CircuitSpec struct {
	Name               string         `yaml:"name" json:"name"`
	QuantumRegisters   []RegisterSpec `yaml:"quantum_registers,omitempty" json:"quantum_registers,omitempty"`
	ClassicalRegisters []RegisterSpec `yaml:"classical_registers,omitempty" json:"classical_registers,omitempty"`
	QASM               string         `yaml:"qasm,omitempty" json:"qasm,omitempty"`
	QASMFile           string         `yaml:"qasm_file,omitempty" json:"qasm_file,omitempty"`
}

// RunSpec holds compile and dispatch parameters. Zero values mean "use the
// default".
type RunSpec struct {
	Device      string        `yaml:"device,omitempty" json:"device,omitempty"`
	Circuits    []string      `yaml:"circuits,omitempty" json:"circuits,omitempty"`
	Shots       int           `yaml:"shots,omitempty" json:"shots,omitempty"`
	MaxCredits  int           `yaml:"max_credits,omitempty" json:"max_credits,omitempty"`
	Seed        *int64        `yaml:"seed,omitempty" json:"seed,omitempty"`
	Wait        int           `yaml:"wait,omitempty" json:"wait,omitempty"`
	Timeout     int           `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	BasisGates  []string      `yaml:"basis_gates,omitempty" json:"basis_gates,omitempty"`
	CouplingMap map[int][]int `yaml:"coupling_map,omitempty" json:"coupling_map,omitempty"`
}

// Load reads a spec from path, choosing the format by extension. A
// directory is loaded as a CUE package.
func Load(path string) (*ProgramSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}

	var spec *ProgramSpec
	switch ext := filepath.Ext(path); {
	case info.IsDir():
		spec, err = LoadCUEDir(path)
	case ext == ".cue":
		spec, err = LoadCUEFile(path)
	case ext == ".yaml" || ext == ".yml":
		spec, err = LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported spec format %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spec %s: %w", path, err)
	}
	return spec, nil
}

// ApplyEnv overrides the API block from the environment. getenv is usually
// os.Getenv.
func (s *ProgramSpec) ApplyEnv(getenv func(string) string) {
	token, url := getenv(EnvAPIToken), getenv(EnvAPIURL)
	if token == "" && url == "" {
		return
	}
	if s.API == nil {
		s.API = &APISpec{}
	}
	if token != "" {
		s.API.Token = token
	}
	if url != "" {
		s.API.URL = url
	}
}

// CircuitNames lists the circuits the spec declares, in order.
func (s *ProgramSpec) CircuitNames() []string {
	if len(s.Circuits) == 0 {
		if s.Name != "" && s.QuantumRegisters != nil && s.ClassicalRegisters != nil {
			return []string{s.Name}
		}
		return nil
	}
	names := make([]string, len(s.Circuits))
	for i, c := range s.Circuits {
		names[i] = c.Name
	}
	return names
}

// QASMPath resolves c.QASMFile against the spec's directory.
func (s *ProgramSpec) QASMPath(c CircuitSpec) string {
	if c.QASMFile == "" || filepath.IsAbs(c.QASMFile) || s.BaseDir == "" {
		return c.QASMFile
	}
	return filepath.Join(s.BaseDir, c.QASMFile)
}

// Validate checks that required fields are present and consistent.
func (s *ProgramSpec) Validate() error {
	seen := make(map[string]bool)
	for i, c := range s.Circuits {
		if c.Name == "" {
			return fmt.Errorf("circuits[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("circuits[%d]: duplicate circuit %q", i, c.Name)
		}
		seen[c.Name] = true
		if c.QASM != "" && c.QASMFile != "" {
			return fmt.Errorf("circuits[%d]: qasm and qasm_file are mutually exclusive", i)
		}
		for j, r := range c.QuantumRegisters {
			if err := r.validate(); err != nil {
				return fmt.Errorf("circuits[%d].quantum_registers[%d]: %w", i, j, err)
			}
		}
		for j, r := range c.ClassicalRegisters {
			if err := r.validate(); err != nil {
				return fmt.Errorf("circuits[%d].classical_registers[%d]: %w", i, j, err)
			}
		}
	}

	if len(s.Circuits) == 0 {
		if r := s.QuantumRegisters; r != nil {
			if err := r.validate(); err != nil {
				return fmt.Errorf("quantum_registers: %w", err)
			}
		}
		if r := s.ClassicalRegisters; r != nil {
			if err := r.validate(); err != nil {
				return fmt.Errorf("classical_registers: %w", err)
			}
		}
		if s.QuantumRegisters != nil && s.ClassicalRegisters != nil && s.Name == "" {
			return fmt.Errorf("name is required for a single-circuit spec")
		}
	}

	if s.Run != nil {
		if err := s.Run.validate(s.CircuitNames()); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	return nil
}

func (r RegisterSpec) validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Size < 1 {
		return fmt.Errorf("register %q: size must be >= 1, got %d", r.Name, r.Size)
	}
	return nil
}

func (r *RunSpec) validate(declared []string) error {
	if r.Shots < 0 {
		return fmt.Errorf("shots must not be negative")
	}
	if r.MaxCredits < 0 {
		return fmt.Errorf("max_credits must not be negative")
	}
	if r.Wait < 0 || r.Timeout < 0 {
		return fmt.Errorf("wait and timeout must not be negative")
	}
	for _, name := range r.Circuits {
		if !slices.Contains(declared, name) {
			return fmt.Errorf("circuit %q is not declared", name)
		}
	}
	return nil
}
