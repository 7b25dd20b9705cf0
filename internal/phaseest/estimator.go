package phaseest

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/roach88/qprog/internal/ir"
)

// MaxEvaluationQubits bounds the phase register of StatevectorEstimator.
const MaxEvaluationQubits = 12

// PhaseEstimator measures the eigenphases of a unitary on a prepared state.
type PhaseEstimator interface {
	// Estimate runs phase estimation of unitary on statePrep. A nil
	// statePrep means the all-zeros state.
	Estimate(unitary ir.Matrix, statePrep []complex128) (PhaseResult, error)
}

// PhaseResult is the measured distribution of the phase register.
type PhaseResult struct {
	NumEvaluationQubits int

	// Phases maps a phase bitstring (binary fraction, most significant bit
	// first) to its probability. Outcomes below 1e-12 are omitted.
	Phases map[string]float64
}

// MostLikelyBitstring returns the most probable outcome; ties go to the
// smallest bitstring.
func (r PhaseResult) MostLikelyBitstring() string {
	keys := make([]string, 0, len(r.Phases))
	for k := range r.Phases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestP := "", -1.0
	for _, k := range keys {
		if p := r.Phases[k]; p > bestP {
			best, bestP = k, p
		}
	}
	return best
}

// MostLikelyPhase returns the most probable phase in [0, 1).
func (r PhaseResult) MostLikelyPhase() float64 {
	bits := r.MostLikelyBitstring()
	if bits == "" {
		return 0
	}
	phase, _ := PhaseFromBitstring(bits)
	return phase
}

// StatevectorEstimator computes the exact outcome distribution of textbook
// phase estimation with NumEvaluationQubits phase qubits: controlled powers
// of the unitary followed by an inverse Fourier transform.
type StatevectorEstimator struct {
	NumEvaluationQubits int
}

var _ PhaseEstimator = StatevectorEstimator{}

// Estimate implements PhaseEstimator.
func (e StatevectorEstimator) Estimate(unitary ir.Matrix, statePrep []complex128) (PhaseResult, error) {
	t := e.NumEvaluationQubits
	if t < 1 || t > MaxEvaluationQubits {
		return PhaseResult{}, fmt.Errorf("evaluation qubits must be in 1..%d, got %d", MaxEvaluationQubits, t)
	}
	dim := len(unitary)
	if dim == 0 || dim&(dim-1) != 0 {
		return PhaseResult{}, fmt.Errorf("unitary dimension %d is not a power of two", dim)
	}
	for i, row := range unitary {
		if len(row) != dim {
			return PhaseResult{}, fmt.Errorf("unitary row %d has %d entries, want %d", i, len(row), dim)
		}
	}
	psi, err := prepare(statePrep, dim)
	if err != nil {
		return PhaseResult{}, err
	}

	// powers[j] = U^j |psi>
	n := 1 << t
	powers := make([][]complex128, n)
	powers[0] = psi
	for j := 1; j < n; j++ {
		powers[j] = apply(unitary, powers[j-1])
	}

	res := PhaseResult{NumEvaluationQubits: t, Phases: make(map[string]float64)}
	amp := make([]complex128, dim)
	for k := 0; k < n; k++ {
		clear(amp)
		for j := 0; j < n; j++ {
			w := cmplx.Rect(1/float64(n), -2*math.Pi*float64(j*k%n)/float64(n))
			for i, v := range powers[j] {
				amp[i] += w * v
			}
		}
		var p float64
		for _, a := range amp {
			p += real(a)*real(a) + imag(a)*imag(a)
		}
		if p > 1e-12 {
			res.Phases[fmt.Sprintf("%0*b", t, k)] = p
		}
	}
	return res, nil
}

// prepare returns a normalized copy of state, or |0...0> for nil.
func prepare(state []complex128, dim int) ([]complex128, error) {
	psi := make([]complex128, dim)
	if state == nil {
		psi[0] = 1
		return psi, nil
	}
	if len(state) != dim {
		return nil, fmt.Errorf("state has %d amplitudes, want %d", len(state), dim)
	}
	var norm float64
	for _, a := range state {
		norm += real(a)*real(a) + imag(a)*imag(a)
	}
	if norm == 0 {
		return nil, fmt.Errorf("state has zero norm")
	}
	inv := complex(1/math.Sqrt(norm), 0)
	for i, a := range state {
		psi[i] = a * inv
	}
	return psi, nil
}

func apply(m ir.Matrix, v []complex128) []complex128 {
	out := make([]complex128, len(v))
	for i, row := range m {
		var s complex128
		for j, a := range row {
			s += a * v[j]
		}
		out[i] = s
	}
	return out
}
