package compiler

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/roach88/qprog/internal/ir"
)

const angleTolerance = 1e-9

type mat2 [2][2]complex128

func (a mat2) mul(b mat2) mat2 {
	var out mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return out
}

// U3Matrix returns the unitary of u3(theta, phi, lambda).
func U3Matrix(theta, phi, lambda float64) [2][2]complex128 {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return [2][2]complex128{
		{complex(c, 0), -cmplx.Exp(complex(0, lambda)) * complex(s, 0)},
		{cmplx.Exp(complex(0, phi)) * complex(s, 0), cmplx.Exp(complex(0, phi+lambda)) * complex(c, 0)},
	}
}

func singleQubitMatrix(g ir.Gate) (mat2, error) {
	want := map[string]int{"u1": 1, "u2": 2, "u3": 3, "id": 0}[g.Name]
	if len(g.Params) != want {
		return mat2{}, fmt.Errorf("gate %q: want %d params, got %d", g.Name, want, len(g.Params))
	}
	switch g.Name {
	case "u1":
		return U3Matrix(0, 0, g.Params[0]), nil
	case "u2":
		return U3Matrix(math.Pi/2, g.Params[0], g.Params[1]), nil
	case "u3":
		return U3Matrix(g.Params[0], g.Params[1], g.Params[2]), nil
	default:
		return U3Matrix(0, 0, 0), nil
	}
}

func isMergeable(g ir.Gate) bool {
	if g.Condition != nil || len(g.Qubits) != 1 {
		return false
	}
	switch g.Name {
	case "u1", "u2", "u3", "id":
		return true
	}
	return false
}

// normalizeAngle folds a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	if math.Abs(a) < angleTolerance {
		return 0
	}
	return a
}

// EulerAngles recovers (theta, phi, lambda) such that u3(theta, phi, lambda)
// equals m up to global phase.
func EulerAngles(m [2][2]complex128) (theta, phi, lambda float64) {
	theta = 2 * math.Atan2(cmplx.Abs(m[1][0]), cmplx.Abs(m[0][0]))
	var alpha float64
	if cmplx.Abs(m[0][0]) > angleTolerance {
		alpha = cmplx.Phase(m[0][0])
	} else {
		alpha = cmplx.Phase(-m[0][1])
	}
	if cmplx.Abs(m[1][0]) > angleTolerance {
		phi = cmplx.Phase(m[1][0]) - alpha
	}
	if cmplx.Abs(m[0][1]) > angleTolerance {
		lambda = cmplx.Phase(-m[0][1]) - alpha
	} else {
		lambda = cmplx.Phase(m[1][1]) - alpha - phi
	}
	return normalizeAngle(theta), normalizeAngle(phi), normalizeAngle(lambda)
}

// synthesize emits the cheapest of u1/u2/u3 for m, or nothing when m is
// the identity up to global phase.
func synthesize(m mat2, q ir.Bit) []ir.Gate {
	theta, phi, lambda := EulerAngles(m)
	switch {
	case math.Abs(theta) < angleTolerance:
		l := normalizeAngle(phi + lambda)
		if l == 0 {
			return nil
		}
		return []ir.Gate{{Name: "u1", Params: []float64{l}, Qubits: []ir.Bit{q}}}
	case math.Abs(theta-math.Pi/2) < angleTolerance:
		return []ir.Gate{{Name: "u2", Params: []float64{phi, lambda}, Qubits: []ir.Bit{q}}}
	default:
		return []ir.Gate{{Name: "u3", Params: []float64{theta, phi, lambda}, Qubits: []ir.Bit{q}}}
	}
}

type run struct {
	first int
	gates []ir.Gate
	m     mat2
}

// Optimize1Q merges maximal runs of unconditioned u1/u2/u3/id gates on the
// same qubit into a single gate. Runs of one gate are kept as written.
func (CouplingMapper) Optimize1Q(c *ir.Circuit) (*ir.Circuit, error) {
	out := c.Clone()
	out.Gates = out.Gates[:0:0]
	runs := make(map[ir.Bit]*run)

	flush := func(q ir.Bit) {
		r, ok := runs[q]
		if !ok {
			return
		}
		delete(runs, q)
		if len(r.gates) == 1 {
			out.Gates = append(out.Gates, r.gates[0])
			return
		}
		out.Gates = append(out.Gates, synthesize(r.m, q)...)
	}

	for i, gate := range c.Gates {
		if isMergeable(gate) {
			m, err := singleQubitMatrix(gate)
			if err != nil {
				return nil, fmt.Errorf("optimize %q: %w", c.Name, err)
			}
			q := gate.Qubits[0]
			r, ok := runs[q]
			if !ok {
				r = &run{first: i, m: mat2{{1, 0}, {0, 1}}}
				runs[q] = r
			}
			r.gates = append(r.gates, gate)
			r.m = m.mul(r.m)
			continue
		}
		for _, q := range gate.Qubits {
			flush(q)
		}
		out.Gates = append(out.Gates, gate)
	}

	pending := make([]ir.Bit, 0, len(runs))
	for q := range runs {
		pending = append(pending, q)
	}
	slices.SortFunc(pending, func(a, b ir.Bit) int { return cmp.Compare(runs[a].first, runs[b].first) })
	for _, q := range pending {
		flush(q)
	}
	return out, nil
}
