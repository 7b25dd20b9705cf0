package phaseest

import (
	"fmt"
	"log/slog"
)

// HamiltonianPhaseEstimation estimates eigenvalues of a Hermitian operator
// with a unitary phase estimator.
type HamiltonianPhaseEstimation struct {
	estimator PhaseEstimator
}

// New creates a HamiltonianPhaseEstimation around estimator.
func New(estimator PhaseEstimator) *HamiltonianPhaseEstimation {
	return &HamiltonianPhaseEstimation{estimator: estimator}
}

// Result is a phase estimation outcome with what is needed to read it as
// eigenvalues.
type Result struct {
	PhaseResult
	IDCoefficient float64
	Scale         Scale
}

// MostLikelyEigenvalue returns the eigenvalue of the most probable phase.
func (r *Result) MostLikelyEigenvalue() float64 {
	return r.Scale.ScalePhase(r.MostLikelyPhase(), r.IDCoefficient)
}

// FilteredEigenvalues maps eigenvalues to probabilities, keeping outcomes
// with probability above cutoff.
func (r *Result) FilteredEigenvalues(cutoff float64) (map[float64]float64, error) {
	kept := make(map[string]float64)
	for bits, p := range r.Phases {
		if p > cutoff {
			kept[bits] = p
		}
	}
	return r.Scale.ScalePhases(kept, r.IDCoefficient)
}

// Estimate runs phase estimation for hamiltonian.
//
// Identity terms are removed and their weight is added back to every
// eigenvalue. bound, when non-nil, must bound |eigenvalue| of the remaining
// operator; otherwise it is derived from the Pauli coefficients. A nil
// evolution means MatrixEvolution. A nil statePrep means the all-zeros
// state.
func (h *HamiltonianPhaseEstimation) Estimate(hamiltonian PauliSum, statePrep []complex128, evolution Evolution, bound *float64) (*Result, error) {
	if err := hamiltonian.Validate(); err != nil {
		return nil, fmt.Errorf("hamiltonian: %w", err)
	}
	if evolution == nil {
		evolution = MatrixEvolution{}
	}

	idCoeff, rest := RemoveIdentity(hamiltonian)
	if len(rest.Terms) == 0 {
		return nil, fmt.Errorf("hamiltonian: %w", ErrNoBound)
	}

	var (
		scale Scale
		err   error
	)
	if bound != nil {
		scale, err = NewScale(*bound)
	} else {
		scale, err = FromPauliSum(rest)
	}
	if err != nil {
		return nil, fmt.Errorf("hamiltonian: %w", err)
	}
	slog.Debug("phase estimation scale", "bound", scale.Bound, "id_coefficient", idCoeff, "terms", len(rest.Terms))

	unitary, err := evolution.Convert(rest.Scale(-scale.Factor()))
	if err != nil {
		return nil, fmt.Errorf("evolve hamiltonian: %w", err)
	}
	phases, err := h.estimator.Estimate(unitary, statePrep)
	if err != nil {
		return nil, fmt.Errorf("estimate phases: %w", err)
	}

	return &Result{PhaseResult: phases, IDCoefficient: idCoeff, Scale: scale}, nil
}
