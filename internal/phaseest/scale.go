package phaseest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Scale maps operator eigenvalues in [-Bound, Bound] onto phases in one
// period and back.
type Scale struct {
	Bound float64
}

// ErrNoBound is returned when no eigenvalue bound can be derived.
var ErrNoBound = errors.New("no eigenvalue bound: operator has no terms")

// NewScale validates an explicit bound.
func NewScale(bound float64) (Scale, error) {
	if !(bound > 0) || math.IsInf(bound, 0) {
		return Scale{}, fmt.Errorf("eigenvalue bound must be positive and finite, got %g", bound)
	}
	return Scale{Bound: bound}, nil
}

// FromPauliSum bounds the spectrum by |Coeff| * Σ|term coeff|.
func FromPauliSum(s PauliSum) (Scale, error) {
	var sum float64
	for _, t := range s.Terms {
		sum += math.Abs(t.Coeff)
	}
	bound := math.Abs(s.Coeff) * sum
	if bound == 0 {
		return Scale{}, ErrNoBound
	}
	return NewScale(bound)
}

// Factor is the multiplier applied to the operator before exponentiation.
func (s Scale) Factor() float64 {
	return math.Pi / s.Bound
}

// ScalePhase converts a phase in [0, 1) back to an eigenvalue, adding id.
// Phases above one half stand for negative eigenvalues.
func (s Scale) ScalePhase(phase, id float64) float64 {
	w := 2 * s.Bound
	if phase <= 0.5 {
		return phase*w + id
	}
	return (phase-1)*w + id
}

// ScalePhases converts a bitstring -> probability table into an eigenvalue
// -> probability table. Bitstrings are binary fractions, most significant
// bit first. Probabilities of bitstrings that map to the same eigenvalue are
// summed.
func (s Scale) ScalePhases(phases map[string]float64, id float64) (map[float64]float64, error) {
	out := make(map[float64]float64, len(phases))
	for bits, p := range phases {
		phase, err := PhaseFromBitstring(bits)
		if err != nil {
			return nil, err
		}
		out[s.ScalePhase(phase, id)] += p
	}
	return out, nil
}

// PhaseFromBitstring reads bits as the fraction 0.b1b2...bn.
func PhaseFromBitstring(bits string) (float64, error) {
	if bits == "" || len(bits) > 62 {
		return 0, fmt.Errorf("phase bitstring %q: want 1..62 bits", bits)
	}
	k, err := strconv.ParseUint(bits, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("phase bitstring %q: %w", bits, err)
	}
	return float64(k) / float64(uint64(1)<<len(bits)), nil
}
