package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
)

// MaxQubits bounds the statevector size.
const MaxQubits = 24

// State is a dense statevector. Qubit i is bit i of the basis index.
type State struct {
	amps []complex128
	n    int
}

// NewState returns |0...0> over n qubits.
func NewState(n int) (*State, error) {
	if n < 0 || n > MaxQubits {
		return nil, fmt.Errorf("statevector: %d qubits out of range [0, %d]", n, MaxQubits)
	}
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &State{amps: amps, n: n}, nil
}

// NewBasisState returns the computational basis state |index>.
func NewBasisState(n int, index int) (*State, error) {
	s, err := NewState(n)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.amps) {
		return nil, fmt.Errorf("statevector: basis index %d out of range", index)
	}
	s.amps[0] = 0
	s.amps[index] = 1
	return s, nil
}

// Amplitudes returns a copy of the amplitudes.
func (s *State) Amplitudes() []complex128 {
	return append([]complex128(nil), s.amps...)
}

// apply applies the 2x2 matrix m to target, conditioned on every control
// qubit being 1.
func (s *State) apply(m mat2, target int, controls ...int) {
	tbit := 1 << target
	var cmask int
	for _, c := range controls {
		cmask |= 1 << c
	}
	for i := range s.amps {
		if i&tbit != 0 || i&cmask != cmask {
			continue
		}
		j := i | tbit
		a, b := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a + m[0][1]*b
		s.amps[j] = m[1][0]*a + m[1][1]*b
	}
}

func (s *State) swap(a, b int) {
	abit, bbit := 1<<a, 1<<b
	for i := range s.amps {
		if i&abit != 0 && i&bbit == 0 {
			j := (i &^ abit) | bbit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// probabilityOne returns the probability of measuring q as 1.
func (s *State) probabilityOne(q int) float64 {
	bit := 1 << q
	p := 0.0
	for i, a := range s.amps {
		if i&bit != 0 {
			p += real(a * cmplx.Conj(a))
		}
	}
	return p
}

// measure collapses q and returns the observed bit.
func (s *State) measure(q int, rng *rand.Rand) int {
	p1 := s.probabilityOne(q)
	outcome := 0
	if rng.Float64() < p1 {
		outcome = 1
	}
	norm := p1
	if outcome == 0 {
		norm = 1 - p1
	}
	scale := complex(1/math.Sqrt(norm), 0)
	bit := 1 << q
	for i := range s.amps {
		if (i&bit != 0) == (outcome == 1) {
			s.amps[i] *= scale
		} else {
			s.amps[i] = 0
		}
	}
	return outcome
}

// reset measures q and flips it back to 0 when needed.
func (s *State) reset(q int, rng *rand.Rand) {
	if s.measure(q, rng) == 1 {
		s.apply(pauliX, q)
	}
}
