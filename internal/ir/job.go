package ir

import (
	"fmt"
	"slices"
)

// DeviceClass is the execution capability of a device, resolved once when
// the orchestrator is configured.
type DeviceClass int

const (
	// DeviceUnknown is the zero value; dispatching to it fails.
	DeviceUnknown DeviceClass = iota
	// DeviceRemote is a hosted backend reached through the remote service.
	DeviceRemote
	// DeviceLocalSampling is the local shot-sampling (qasm) simulator.
	DeviceLocalSampling
	// DeviceLocalUnitary is the local unitary simulator.
	DeviceLocalUnitary
)

// String returns a stable name for logs and CLI output.
func (d DeviceClass) String() string {
	switch d {
	case DeviceRemote:
		return "remote"
	case DeviceLocalSampling:
		return "local-sampling"
	case DeviceLocalUnitary:
		return "local-unitary"
	default:
		return "unknown"
	}
}

// IsLocal reports whether the class runs in-process.
func (d DeviceClass) IsLocal() bool {
	return d == DeviceLocalSampling || d == DeviceLocalUnitary
}

// DefaultBasisGates is the target basis used when the caller supplies none.
var DefaultBasisGates = []string{"u1", "u2", "u3", "cx", "id"}

// DefaultBasis returns a fresh copy of DefaultBasisGates.
func DefaultBasis() []string {
	return slices.Clone(DefaultBasisGates)
}

// CouplingMap is a directed adjacency list of physical qubits that support
// a two-qubit interaction (control -> targets).
type CouplingMap map[int][]int

// HasEdge reports whether the directed edge a -> b exists.
func (m CouplingMap) HasEdge(a, b int) bool {
	return slices.Contains(m[a], b)
}

// Clone returns a deep copy of the map, or nil for a nil map.
func (m CouplingMap) Clone() CouplingMap {
	if m == nil {
		return nil
	}
	out := make(CouplingMap, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// OpCondition gates a LocalForm op on the value of a span of classical bits.
type OpCondition struct {
	Offset int    `json:"offset"`
	Width  int    `json:"width"`
	Value  uint64 `json:"value"`
}

// Op is one fully expanded instruction with flat qubit and clbit indices.
type Op struct {
	Name   string       `json:"name"`
	Params []float64    `json:"params,omitempty"`
	Qubits []int        `json:"qubits"`
	Clbits []int        `json:"clbits,omitempty"`
	Cond   *OpCondition `json:"cond,omitempty"`
}

// LocalForm is the execution-ready representation consumed by local engines.
type LocalForm struct {
	NumQubits int  `json:"num_qubits"`
	NumClbits int  `json:"num_clbits"`
	Ops       []Op `json:"ops"`
}

// CompiledJob is one circuit compiled for one device.
//
// Invariant: Local is non-nil iff Class.IsLocal().
type CompiledJob struct {
	Circuit        string      `json:"name"`
	Class          DeviceClass `json:"class"`
	CompiledSource string      `json:"qasm_compiled"`
	CouplingMap    CouplingMap `json:"coupling_map,omitempty"`
	BasisGates     []string    `json:"basis_gates"`
	Local          *LocalForm  `json:"local,omitempty"`
	Shots          int         `json:"shots"`
	MaxCredits     int         `json:"max_credits"`
	Seed           *int64      `json:"seed,omitempty"`
}

// IsLocal reports whether the job targets an in-process engine.
func (j CompiledJob) IsLocal() bool {
	return j.Class.IsLocal()
}

// Validate checks the structural invariants of a compiled job.
func (j CompiledJob) Validate() error {
	if j.Circuit == "" {
		return fmt.Errorf("compiled job: circuit name is required")
	}
	if j.Shots < 1 {
		return fmt.Errorf("compiled job %q: shots must be >= 1, got %d", j.Circuit, j.Shots)
	}
	if j.MaxCredits < 0 {
		return fmt.Errorf("compiled job %q: max credits must be >= 0, got %d", j.Circuit, j.MaxCredits)
	}
	if j.IsLocal() != (j.Local != nil) {
		return fmt.Errorf("compiled job %q: local form present=%t for %s device", j.Circuit, j.Local != nil, j.Class)
	}
	return nil
}
