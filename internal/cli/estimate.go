package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qprog/internal/phaseest"
)

// EstimateOptions holds flags for the estimate command.
type EstimateOptions struct {
	*RootOptions
	Terms      []string
	Bound      float64
	EvalQubits int
	State      string
	Cutoff     float64
}

// eigenvalue is one filtered outcome in output.
type eigenvalue struct {
	Value       float64 `json:"value"`
	Probability float64 `json:"probability"`
}

// estimateOutput is the JSON payload of the estimate command.
type estimateOutput struct {
	Bitstring     string       `json:"most_likely_bitstring"`
	Phase         float64      `json:"most_likely_phase"`
	Eigenvalue    float64      `json:"most_likely_eigenvalue"`
	Bound         float64      `json:"bound"`
	IDCoefficient float64      `json:"id_coefficient"`
	Eigenvalues   []eigenvalue `json:"eigenvalues"`
}

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EstimateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate eigenvalues of a Pauli-sum Hamiltonian",
		Long: `Run Hamiltonian phase estimation on the local simulator.

Each --term is LABEL=COEFF, where LABEL is made of I, X, Y and Z and its
leftmost character acts on the highest qubit. The input state is a basis
state given as a bitstring in the same order (default all zeros).

Example:
  qprog estimate --term Z=0.5 --term I=1 --bound 1 --state 1
  qprog estimate --term ZI=0.5 --term IZ=0.5 --eval-qubits 4 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Terms, "term", nil, "Pauli term LABEL=COEFF (repeatable, required)")
	cmd.Flags().Float64Var(&opts.Bound, "bound", 0, "bound on |eigenvalue| of the non-identity part (default: sum of |coeff|)")
	cmd.Flags().IntVar(&opts.EvalQubits, "eval-qubits", 6, "number of evaluation qubits")
	cmd.Flags().StringVar(&opts.State, "state", "", "input basis state as a bitstring")
	cmd.Flags().Float64Var(&opts.Cutoff, "cutoff", 0.01, "hide eigenvalues with probability at or below this")
	_ = cmd.MarkFlagRequired("term")

	return cmd
}

func runEstimate(opts *EstimateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	hamiltonian, err := parseTerms(opts.Terms)
	if err != nil {
		return reportError(formatter, ExitCommandError, "invalid hamiltonian", err)
	}
	state, err := basisState(opts.State, hamiltonian.NumQubits())
	if err != nil {
		return reportError(formatter, ExitCommandError, "invalid state", err)
	}
	var bound *float64
	if cmd.Flags().Changed("bound") {
		bound = &opts.Bound
	}

	hpe := phaseest.New(phaseest.StatevectorEstimator{NumEvaluationQubits: opts.EvalQubits})
	res, err := hpe.Estimate(hamiltonian, state, nil, bound)
	if err != nil {
		return reportError(formatter, ExitFailure, "phase estimation failed", err)
	}
	filtered, err := res.FilteredEigenvalues(opts.Cutoff)
	if err != nil {
		return reportError(formatter, ExitFailure, "phase estimation failed", err)
	}

	out := estimateOutput{
		Bitstring:     res.MostLikelyBitstring(),
		Phase:         res.MostLikelyPhase(),
		Eigenvalue:    res.MostLikelyEigenvalue(),
		Bound:         res.Scale.Bound,
		IDCoefficient: res.IDCoefficient,
		Eigenvalues:   sortedEigenvalues(filtered),
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}
	fmt.Fprintf(formatter.Writer, "Most likely: %s (phase %g) -> eigenvalue %g\n\n", out.Bitstring, out.Phase, out.Eigenvalue)
	rows := make([][]string, len(out.Eigenvalues))
	for i, e := range out.Eigenvalues {
		rows[i] = []string{
			strconv.FormatFloat(e.Value, 'g', 6, 64),
			strconv.FormatFloat(e.Probability, 'f', 4, 64),
		}
	}
	formatter.Table([]string{"EIGENVALUE", "PROBABILITY"}, rows)
	return nil
}

// parseTerms parses LABEL=COEFF pairs into a Pauli sum.
func parseTerms(specs []string) (phaseest.PauliSum, error) {
	if len(specs) == 0 {
		return phaseest.PauliSum{}, fmt.Errorf("at least one --term is required")
	}
	terms := make([]phaseest.PauliTerm, 0, len(specs))
	for _, s := range specs {
		label, coeff, ok := strings.Cut(s, "=")
		if !ok {
			return phaseest.PauliSum{}, fmt.Errorf("term %q: want LABEL=COEFF", s)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(coeff), 64)
		if err != nil {
			return phaseest.PauliSum{}, fmt.Errorf("term %q: %w", s, err)
		}
		terms = append(terms, phaseest.PauliTerm{
			Label: strings.ToUpper(strings.TrimSpace(label)),
			Coeff: c,
		})
	}
	sum := phaseest.NewPauliSum(terms...)
	if err := sum.Validate(); err != nil {
		return phaseest.PauliSum{}, err
	}
	return sum, nil
}

// basisState returns the state vector of the basis state named by bits, or
// nil for the all-zeros default.
func basisState(bits string, numQubits int) ([]complex128, error) {
	if bits == "" {
		return nil, nil
	}
	if len(bits) != numQubits {
		return nil, fmt.Errorf("state %q has %d bits, hamiltonian acts on %d qubits", bits, len(bits), numQubits)
	}
	index, err := strconv.ParseUint(bits, 2, 64)
	if err != nil {
		return nil, fmt.Errorf("state %q is not a bitstring", bits)
	}
	state := make([]complex128, 1<<numQubits)
	state[index] = 1
	return state, nil
}

// sortedEigenvalues orders eigenvalues by descending probability, then value.
func sortedEigenvalues(m map[float64]float64) []eigenvalue {
	out := make([]eigenvalue, 0, len(m))
	for v, p := range m {
		out = append(out, eigenvalue{Value: v, Probability: p})
	}
	slices.SortFunc(out, func(a, b eigenvalue) int {
		if c := cmp.Compare(b.Probability, a.Probability); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}
