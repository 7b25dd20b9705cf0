package qasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/qprog/internal/ir"
)

// Header is the preamble written at the top of every emitted program.
const Header = "OPENQASM 2.0;\ninclude \"qelib1.inc\";\n"

// Emit renders a circuit as OpenQASM 2.0 source.
func Emit(c *ir.Circuit) string {
	var sb strings.Builder
	sb.WriteString(Header)
	for _, r := range c.QuantumRegisters {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	for _, r := range c.ClassicalRegisters {
		fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
	}
	for _, g := range c.Gates {
		sb.WriteString(EmitGate(g))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EmitGate renders one instruction, including its trailing semicolon.
func EmitGate(g ir.Gate) string {
	var sb strings.Builder
	if g.Condition != nil {
		fmt.Fprintf(&sb, "if(%s==%d) ", g.Condition.Register, g.Condition.Value)
	}
	if g.Name == ir.GateMeasure {
		fmt.Fprintf(&sb, "measure %s -> %s;", g.Qubits[0], g.Clbits[0])
		return sb.String()
	}
	sb.WriteString(g.Name)
	if len(g.Params) > 0 {
		params := make([]string, len(g.Params))
		for i, p := range g.Params {
			params[i] = FormatParam(p)
		}
		sb.WriteString("(" + strings.Join(params, ",") + ")")
	}
	args := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		args[i] = q.String()
	}
	sb.WriteString(" " + strings.Join(args, ","))
	sb.WriteByte(';')
	return sb.String()
}

// FormatParam prints a gate parameter, using pi fractions when exact.
func FormatParam(p float64) string {
	if p == 0 {
		return "0"
	}
	for _, den := range []float64{1, 2, 3, 4, 6, 8} {
		k := p * den / math.Pi
		rk := math.Round(k)
		if rk == 0 || math.Abs(k-rk) > 1e-12 {
			continue
		}
		var num string
		switch rk {
		case 1:
			num = "pi"
		case -1:
			num = "-pi"
		default:
			num = strconv.FormatFloat(rk, 'f', -1, 64) + "*pi"
		}
		if den == 1 {
			return num
		}
		return num + "/" + strconv.FormatFloat(den, 'f', -1, 64)
	}
	return strconv.FormatFloat(p, 'g', -1, 64)
}
