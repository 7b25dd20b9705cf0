package phaseest

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/sim"
)

// Evolution turns an operator into the unitary exp(-i op).
type Evolution interface {
	Convert(op PauliSum) (ir.Matrix, error)
}

// MatrixEvolution exponentiates the dense matrix of the operator exactly,
// up to floating point. Limited to sim.MaxUnitaryQubits qubits.
type MatrixEvolution struct{}

var _ Evolution = MatrixEvolution{}

// Convert implements Evolution.
func (MatrixEvolution) Convert(op PauliSum) (ir.Matrix, error) {
	h, err := PauliMatrix(op)
	if err != nil {
		return nil, err
	}
	return expMinusI(h), nil
}

// PauliMatrix returns the dense matrix of s. Basis index bit q is qubit q,
// so the rightmost label character acts on bit 0.
func PauliMatrix(s PauliSum) (ir.Matrix, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := s.NumQubits()
	if n == 0 {
		return nil, fmt.Errorf("pauli matrix: operator has no terms")
	}
	if n > sim.MaxUnitaryQubits {
		return nil, fmt.Errorf("pauli matrix: %d qubits exceed the limit of %d", n, sim.MaxUnitaryQubits)
	}

	dim := 1 << n
	m := newMatrix(dim)
	for _, t := range s.Terms {
		coeff := complex(s.Coeff*t.Coeff, 0)
		for col := 0; col < dim; col++ {
			row, phase := col, complex(1, 0)
			for p, f := range t.Label {
				q := n - 1 - p
				set := col>>q&1 == 1
				switch f {
				case 'X':
					row ^= 1 << q
				case 'Y':
					row ^= 1 << q
					if set {
						phase *= -1i
					} else {
						phase *= 1i
					}
				case 'Z':
					if set {
						phase = -phase
					}
				}
			}
			m[row][col] += coeff * phase
		}
	}
	return m, nil
}

// expMinusI computes exp(-i h) by scaling and squaring a Taylor series.
func expMinusI(h ir.Matrix) ir.Matrix {
	dim := len(h)

	squarings := 0
	if norm := oneNorm(h); norm > 0.5 {
		squarings = int(math.Ceil(math.Log2(norm / 0.5)))
	}
	scale := complex(0, -1/math.Exp2(float64(squarings)))

	b := newMatrix(dim)
	for i := range h {
		for j := range h[i] {
			b[i][j] = h[i][j] * scale
		}
	}

	sum := identity(dim)
	term := identity(dim)
	for k := 1; k <= 30; k++ {
		term = mul(term, b)
		inv := complex(1/float64(k), 0)
		small := true
		for i := range term {
			for j := range term[i] {
				term[i][j] *= inv
				sum[i][j] += term[i][j]
				if cmplx.Abs(term[i][j]) > 1e-18 {
					small = false
				}
			}
		}
		if small {
			break
		}
	}

	for range squarings {
		sum = mul(sum, sum)
	}
	return sum
}

func newMatrix(dim int) ir.Matrix {
	m := make(ir.Matrix, dim)
	for i := range m {
		m[i] = make([]complex128, dim)
	}
	return m
}

func identity(dim int) ir.Matrix {
	m := newMatrix(dim)
	for i := range m {
		m[i][i] = 1
	}
	return m
}

func mul(a, b ir.Matrix) ir.Matrix {
	dim := len(a)
	out := newMatrix(dim)
	for i := 0; i < dim; i++ {
		for k := 0; k < dim; k++ {
			if a[i][k] == 0 {
				continue
			}
			for j := 0; j < dim; j++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

func oneNorm(m ir.Matrix) float64 {
	var best float64
	for j := range m {
		var col float64
		for i := range m {
			col += cmplx.Abs(m[i][j])
		}
		best = max(best, col)
	}
	return best
}
