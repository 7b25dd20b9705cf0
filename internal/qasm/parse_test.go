package qasm

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
)

const bellSource = `OPENQASM 2.0;
include "qelib1.inc";
// prepare a Bell pair
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q -> c;
`

func TestParse_Bell(t *testing.T) {
	circ, err := Parse("bell", bellSource)
	require.NoError(t, err)

	assert.Equal(t, "bell", circ.Name)
	assert.Equal(t, 2, circ.NumQubits())
	assert.Equal(t, 2, circ.NumClbits())
	require.Len(t, circ.Gates, 4)

	assert.Equal(t, "h", circ.Gates[0].Name)
	assert.Equal(t, []ir.Bit{{Register: "q", Index: 0}, {Register: "q", Index: 1}}, circ.Gates[1].Qubits)
	assert.Equal(t, ir.GateMeasure, circ.Gates[3].Name)
	assert.Equal(t, ir.Bit{Register: "c", Index: 1}, circ.Gates[3].Clbits[0])
}

func TestParse_BroadcastGate(t *testing.T) {
	circ, err := Parse("b", "qreg a[3]; qreg b[3]; cx a,b; h a[1];")
	require.NoError(t, err)
	require.Len(t, circ.Gates, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, circ.Gates[i].Qubits[0].Index)
		assert.Equal(t, "b", circ.Gates[i].Qubits[1].Register)
	}
}

func TestParse_ParamsAndCondition(t *testing.T) {
	src := `qreg q[1]; creg c[1];
u3(pi/2, -pi/4, 2*(pi+0)) q[0];
if(c==1) u1(0.5e-1) q[0];`
	circ, err := Parse("p", src)
	require.NoError(t, err)
	require.Len(t, circ.Gates, 2)

	assert.InDeltaSlice(t, []float64{math.Pi / 2, -math.Pi / 4, 2 * math.Pi}, circ.Gates[0].Params, 1e-12)
	require.NotNil(t, circ.Gates[1].Condition)
	assert.Equal(t, ir.Condition{Register: "c", Value: 1}, *circ.Gates[1].Condition)
	assert.InDelta(t, 0.05, circ.Gates[1].Params[0], 1e-12)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown register":   "qreg q[1]; h r[0];",
		"out of range":       "qreg q[1]; h q[1];",
		"gate definition":    "gate foo a { h a; }",
		"measure mismatch":   "qreg q[2]; creg c[1]; measure q -> c;",
		"bad version":        "OPENQASM 3.0;",
		"unknown identifier": "qreg q[1]; u1(theta) q[0];",
		"missing args":       "qreg q[1]; h;",
		"cx arity":           "qreg q[2]; cx q[0];",
		"u3 without params":  "qreg q[1]; u3 q[0];",
		"extra params":       "qreg q[1]; h(0.5) q[0];",
		"repeated qubit":     "qreg q[2]; cx q[1],q[1];",
		"broadcast overlap":  "qreg q[2]; cx q,q[0];",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("bad", src)
			require.Error(t, err)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParse_GateSignatureError(t *testing.T) {
	_, err := Parse("bad", "qreg q[2];\nh q[0];\ncx q[1],q[1];\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Message, "qubit q[1] used twice")
}

func TestParse_ErrorLine(t *testing.T) {
	_, err := Parse("bad", "qreg q[1];\n\nh z[0];\n")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestParseFile_DefaultsNameToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.qasm")
	require.NoError(t, os.WriteFile(path, []byte(bellSource), 0644))

	circ, err := ParseFile("", path)
	require.NoError(t, err)
	assert.Equal(t, path, circ.Name)

	_, err = ParseFile("x", filepath.Join(t.TempDir(), "missing.qasm"))
	assert.Error(t, err)
}

func TestEmit_RoundTrip(t *testing.T) {
	circ, err := Parse("bell", bellSource)
	require.NoError(t, err)

	out := Emit(circ)
	assert.Equal(t, `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`, out)

	again, err := Parse("bell", out)
	require.NoError(t, err)
	assert.Equal(t, circ.Gates, again.Gates)
}

func TestFormatParam(t *testing.T) {
	cases := map[float64]string{
		0:               "0",
		math.Pi:         "pi",
		-math.Pi / 2:    "-pi/2",
		3 * math.Pi / 4: "3*pi/4",
		0.25:            "0.25",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatParam(in))
	}
}

func TestEvalParam(t *testing.T) {
	v, err := EvalParam("sqrt(4) + 2^3 - -1")
	require.NoError(t, err)
	assert.InDelta(t, 11.0, v, 1e-12)

	_, err = EvalParam("1/0")
	assert.Error(t, err)

	_, err = EvalParam("(1")
	assert.Error(t, err)
}
