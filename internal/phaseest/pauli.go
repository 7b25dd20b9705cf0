// Package phaseest estimates eigenvalues of a Hermitian operator given as a
// sum of Pauli strings.
//
// The operator is shifted by its identity component, scaled so its spectrum
// fits in one phase period, exponentiated into a unitary, and handed to a
// phase estimator. Measured phases are mapped back to eigenvalues.
package phaseest

import (
	"fmt"
	"strings"
)

// PauliTerm is one weighted Pauli string. Label characters are I, X, Y or Z;
// the leftmost character acts on the highest qubit.
type PauliTerm struct {
	Label string
	Coeff float64
}

// IsIdentity reports whether every factor of the term is I.
func (t PauliTerm) IsIdentity() bool {
	return strings.Trim(t.Label, "I") == ""
}

// PauliSum is Coeff * Σ Terms.
type PauliSum struct {
	Coeff float64
	Terms []PauliTerm
}

// NewPauliSum creates a sum with overall coefficient 1.
func NewPauliSum(terms ...PauliTerm) PauliSum {
	return PauliSum{Coeff: 1, Terms: terms}
}

// Scale returns the sum multiplied by f.
func (s PauliSum) Scale(f float64) PauliSum {
	return PauliSum{Coeff: s.Coeff * f, Terms: append([]PauliTerm(nil), s.Terms...)}
}

// NumQubits returns the label width, or 0 for an empty sum.
func (s PauliSum) NumQubits() int {
	if len(s.Terms) == 0 {
		return 0
	}
	return len(s.Terms[0].Label)
}

// Validate checks that all labels are non-empty, equally wide and made of
// I, X, Y and Z.
func (s PauliSum) Validate() error {
	n := s.NumQubits()
	for i, t := range s.Terms {
		if t.Label == "" {
			return fmt.Errorf("term %d: empty label", i)
		}
		if len(t.Label) != n {
			return fmt.Errorf("term %d: label %q has %d qubits, want %d", i, t.Label, len(t.Label), n)
		}
		if strings.Trim(t.Label, "IXYZ") != "" {
			return fmt.Errorf("term %d: label %q has a non-Pauli factor", i, t.Label)
		}
	}
	return nil
}

// RemoveIdentity splits off the all-I terms. idCoeff is their total weight,
// overall coefficient included; rest holds the remaining terms with the
// original overall coefficient.
func RemoveIdentity(s PauliSum) (idCoeff float64, rest PauliSum) {
	rest.Coeff = s.Coeff
	for _, t := range s.Terms {
		if t.IsIdentity() {
			idCoeff += s.Coeff * t.Coeff
			continue
		}
		rest.Terms = append(rest.Terms, t)
	}
	return idCoeff, rest
}
