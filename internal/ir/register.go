package ir

import "fmt"

// RegisterKind distinguishes quantum from classical registers.
type RegisterKind int

const (
	// KindQuantum marks a qubit register (qreg).
	KindQuantum RegisterKind = iota + 1
	// KindClassical marks a classical bit register (creg).
	KindClassical
)

// String returns the QASM keyword for the register kind.
func (k RegisterKind) String() string {
	switch k {
	case KindQuantum:
		return "qreg"
	case KindClassical:
		return "creg"
	default:
		return fmt.Sprintf("RegisterKind(%d)", int(k))
	}
}

// Register is a named, fixed-size block of qubits or classical bits.
// Registers are immutable once created.
type Register struct {
	Name string       `json:"name"`
	Size int          `json:"size"`
	Kind RegisterKind `json:"kind"`
}

// NewRegister validates and creates a register.
func NewRegister(kind RegisterKind, name string, size int) (Register, error) {
	if name == "" {
		return Register{}, fmt.Errorf("%s: name is required", kind)
	}
	if size < 1 {
		return Register{}, fmt.Errorf("%s %q: size must be >= 1, got %d", kind, name, size)
	}
	if kind != KindQuantum && kind != KindClassical {
		return Register{}, fmt.Errorf("register %q: invalid kind %d", name, int(kind))
	}
	return Register{Name: name, Size: size, Kind: kind}, nil
}

// Bit returns a reference to bit i of the register.
func (r Register) Bit(i int) Bit {
	return Bit{Register: r.Name, Index: i}
}

// Bit references one qubit or classical bit by register name and index.
type Bit struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

// String formats the bit as it appears in QASM, e.g. "q[0]".
func (b Bit) String() string {
	return fmt.Sprintf("%s[%d]", b.Register, b.Index)
}
