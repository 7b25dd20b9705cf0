package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/qprog/internal/ir"
)

type mat2 [2][2]complex128

var (
	identity = mat2{{1, 0}, {0, 1}}
	pauliX   = mat2{{0, 1}, {1, 0}}
	pauliY   = mat2{{0, -1i}, {1i, 0}}
	pauliZ   = mat2{{1, 0}, {0, -1}}
	hadamard = mat2{{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}, {complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}}
)

func phase(lambda float64) mat2 {
	return mat2{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}}
}

func u3(theta, phi, lambda float64) mat2 {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return mat2{
		{complex(c, 0), -cmplx.Exp(complex(0, lambda)) * complex(s, 0)},
		{cmplx.Exp(complex(0, phi)) * complex(s, 0), cmplx.Exp(complex(0, phi+lambda)) * complex(c, 0)},
	}
}

func rz(phi float64) mat2 {
	return mat2{{cmplx.Exp(complex(0, -phi/2)), 0}, {0, cmplx.Exp(complex(0, phi/2))}}
}

// singleQubit resolves the matrix of a one-qubit gate.
func singleQubit(name string, p []float64) (mat2, error) {
	need := func(n int) error {
		if len(p) != n {
			return fmt.Errorf("gate %q: want %d params, got %d", name, n, len(p))
		}
		return nil
	}
	var err error
	switch name {
	case "id":
		return identity, need(0)
	case "x":
		return pauliX, need(0)
	case "y":
		return pauliY, need(0)
	case "z":
		return pauliZ, need(0)
	case "h":
		return hadamard, need(0)
	case "s":
		return phase(math.Pi / 2), need(0)
	case "sdg":
		return phase(-math.Pi / 2), need(0)
	case "t":
		return phase(math.Pi / 4), need(0)
	case "tdg":
		return phase(-math.Pi / 4), need(0)
	case "u1":
		if err = need(1); err != nil {
			return mat2{}, err
		}
		return phase(p[0]), nil
	case "u2":
		if err = need(2); err != nil {
			return mat2{}, err
		}
		return u3(math.Pi/2, p[0], p[1]), nil
	case "u3", "U":
		if err = need(3); err != nil {
			return mat2{}, err
		}
		return u3(p[0], p[1], p[2]), nil
	case "rx":
		if err = need(1); err != nil {
			return mat2{}, err
		}
		return u3(p[0], -math.Pi/2, math.Pi/2), nil
	case "ry":
		if err = need(1); err != nil {
			return mat2{}, err
		}
		return u3(p[0], 0, 0), nil
	case "rz":
		if err = need(1); err != nil {
			return mat2{}, err
		}
		return rz(p[0]), nil
	}
	return mat2{}, fmt.Errorf("unsupported gate %q", name)
}

// controlledTargets maps controlled gates to the one-qubit gate they apply.
var controlledTargets = map[string]struct {
	controls int
	base     string
}{
	"cx":  {1, "x"},
	"CX":  {1, "x"},
	"cy":  {1, "y"},
	"cz":  {1, "z"},
	"ch":  {1, "h"},
	"crz": {1, "rz"},
	"cu1": {1, "u1"},
	"cu3": {1, "u3"},
	"ccx": {2, "x"},
}

// applyUnitary applies one non-measurement op to s.
func applyUnitary(s *State, op ir.Op) error {
	if op.Name == "swap" {
		if len(op.Qubits) != 2 {
			return fmt.Errorf("gate swap: want 2 qubits, got %d", len(op.Qubits))
		}
		s.swap(op.Qubits[0], op.Qubits[1])
		return nil
	}
	if ctl, ok := controlledTargets[op.Name]; ok {
		if len(op.Qubits) != ctl.controls+1 {
			return fmt.Errorf("gate %q: want %d qubits, got %d", op.Name, ctl.controls+1, len(op.Qubits))
		}
		m, err := singleQubit(ctl.base, op.Params)
		if err != nil {
			return fmt.Errorf("gate %q: %w", op.Name, err)
		}
		s.apply(m, op.Qubits[ctl.controls], op.Qubits[:ctl.controls]...)
		return nil
	}
	m, err := singleQubit(op.Name, op.Params)
	if err != nil {
		return err
	}
	if len(op.Qubits) != 1 {
		return fmt.Errorf("gate %q: want 1 qubit, got %d", op.Name, len(op.Qubits))
	}
	s.apply(m, op.Qubits[0])
	return nil
}

// conditionHolds reports whether op's classical condition is met by creg.
func conditionHolds(cond *ir.OpCondition, creg uint64) bool {
	if cond == nil {
		return true
	}
	mask := uint64(1)<<cond.Width - 1
	if cond.Width >= 64 {
		mask = math.MaxUint64
	}
	return (creg>>cond.Offset)&mask == cond.Value
}
