package ir

import "fmt"

// Signature is the operand shape of a known gate.
// Qubits < 0 means any positive number of qubits.
type Signature struct {
	Params int
	Qubits int
	Clbits int
}

// signatures covers the qelib1 library plus the primitives U and CX.
// Names outside the table are left to the unroller to accept or reject.
var signatures = map[string]Signature{
	"U":   {Params: 3, Qubits: 1},
	"CX":  {Qubits: 2},
	"u3":  {Params: 3, Qubits: 1},
	"u2":  {Params: 2, Qubits: 1},
	"u1":  {Params: 1, Qubits: 1},
	"id":  {Qubits: 1},
	"x":   {Qubits: 1},
	"y":   {Qubits: 1},
	"z":   {Qubits: 1},
	"h":   {Qubits: 1},
	"s":   {Qubits: 1},
	"sdg": {Qubits: 1},
	"t":   {Qubits: 1},
	"tdg": {Qubits: 1},
	"rx":  {Params: 1, Qubits: 1},
	"ry":  {Params: 1, Qubits: 1},
	"rz":  {Params: 1, Qubits: 1},

	"cx":   {Qubits: 2},
	"cy":   {Qubits: 2},
	"cz":   {Qubits: 2},
	"ch":   {Qubits: 2},
	"swap": {Qubits: 2},
	"crz":  {Params: 1, Qubits: 2},
	"cu1":  {Params: 1, Qubits: 2},
	"cu3":  {Params: 3, Qubits: 2},
	"ccx":  {Qubits: 3},

	GateMeasure: {Qubits: 1, Clbits: 1},
	GateReset:   {Qubits: 1},
	GateBarrier: {Qubits: -1},
}

// CheckGate verifies a known gate's parameter, qubit and clbit counts and
// that no qubit appears twice. Unknown gate names pass.
func CheckGate(g Gate) error {
	sig, ok := signatures[g.Name]
	if !ok {
		return nil
	}
	if len(g.Params) != sig.Params {
		return fmt.Errorf("gate %s: want %d params, got %d", g.Name, sig.Params, len(g.Params))
	}
	switch {
	case sig.Qubits < 0 && len(g.Qubits) == 0:
		return fmt.Errorf("gate %s: want at least 1 qubit, got 0", g.Name)
	case sig.Qubits >= 0 && len(g.Qubits) != sig.Qubits:
		return fmt.Errorf("gate %s: want %d qubits, got %d", g.Name, sig.Qubits, len(g.Qubits))
	}
	if len(g.Clbits) != sig.Clbits {
		return fmt.Errorf("gate %s: want %d clbits, got %d", g.Name, sig.Clbits, len(g.Clbits))
	}
	seen := make(map[Bit]bool, len(g.Qubits))
	for _, q := range g.Qubits {
		if seen[q] {
			return fmt.Errorf("gate %s: qubit %s used twice", g.Name, q)
		}
		seen[q] = true
	}
	return nil
}
