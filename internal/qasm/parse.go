package qasm

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/qprog/internal/ir"
)

var (
	regDeclRegex = regexp.MustCompile(`^(qreg|creg)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	argRegex     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\[\s*(\d+)\s*\])?$`)
	ifRegex      = regexp.MustCompile(`^if\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*==\s*(\d+)\s*\)\s*(.+)$`)
	identRegex   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
)

// ParseError reports a syntax or semantic error at a source line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qasm:%d: %s", e.Line, e.Message)
}

// ParseFile reads and parses a QASM file. The circuit is named after the file
// path unless name is non-empty.
func ParseFile(name, path string) (*ir.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read qasm file: %w", err)
	}
	if name == "" {
		name = path
	}
	return Parse(name, string(data))
}

// Parse parses OpenQASM 2.0 source into a circuit with the given name.
func Parse(name, src string) (*ir.Circuit, error) {
	p := &parser{circ: ir.NewCircuit(name)}
	for _, st := range splitStatements(src) {
		if err := p.statement(st.text, st.line); err != nil {
			return nil, err
		}
	}
	return p.circ, nil
}

type statement struct {
	text string
	line int
}

// splitStatements strips // comments and splits on ';', remembering the line
// each statement starts on.
func splitStatements(src string) []statement {
	var out []statement
	var cur strings.Builder
	line, start := 1, 0
	for _, raw := range strings.Split(src, "\n") {
		if i := strings.Index(raw, "//"); i >= 0 {
			raw = raw[:i]
		}
		for _, r := range raw {
			if cur.Len() == 0 && (r == ' ' || r == '\t' || r == '\r') {
				continue
			}
			if cur.Len() == 0 {
				start = line
			}
			if r == ';' {
				out = append(out, statement{text: strings.TrimSpace(cur.String()), line: start})
				cur.Reset()
				continue
			}
			cur.WriteRune(r)
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		line++
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, statement{text: rest, line: start})
	}
	return out
}

type parser struct {
	circ *ir.Circuit
}

func (p *parser) fail(line int, format string, args ...any) error {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) statement(text string, line int) error {
	switch {
	case text == "":
		return nil
	case strings.HasPrefix(text, "OPENQASM"):
		version := strings.TrimSpace(strings.TrimPrefix(text, "OPENQASM"))
		if !strings.HasPrefix(version, "2") {
			return p.fail(line, "unsupported OPENQASM version %q", version)
		}
		return nil
	case strings.HasPrefix(text, "include"):
		return nil
	case strings.HasPrefix(text, "gate ") || strings.HasPrefix(text, "opaque "):
		return p.fail(line, "gate definitions are not supported")
	}

	if m := regDeclRegex.FindStringSubmatch(text); m != nil {
		size, _ := strconv.Atoi(m[3])
		kind := ir.KindQuantum
		if m[1] == "creg" {
			kind = ir.KindClassical
		}
		reg, err := ir.NewRegister(kind, m[2], size)
		if err != nil {
			return p.fail(line, "%v", err)
		}
		if err := p.circ.AddRegister(reg); err != nil {
			return p.fail(line, "%v", err)
		}
		return nil
	}

	var cond *ir.Condition
	if m := ifRegex.FindStringSubmatch(text); m != nil {
		if _, _, ok := p.circ.ClassicalSpan(m[1]); !ok {
			return p.fail(line, "if: unknown creg %q", m[1])
		}
		v, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return p.fail(line, "if: bad value %q", m[2])
		}
		cond = &ir.Condition{Register: m[1], Value: v}
		text = strings.TrimSpace(m[3])
	}

	gates, err := p.operation(text, line)
	if err != nil {
		return err
	}
	for i := range gates {
		if err := ir.CheckGate(gates[i]); err != nil {
			return p.fail(line, "%v", err)
		}
		if cond != nil {
			c := *cond
			gates[i].Condition = &c
		}
		p.circ.Gates = append(p.circ.Gates, gates[i])
	}
	return nil
}

// operation parses a gate application, measure, reset or barrier, expanding
// whole-register arguments into one gate per index.
func (p *parser) operation(text string, line int) ([]ir.Gate, error) {
	name := identRegex.FindString(text)
	if name == "" {
		return nil, p.fail(line, "unrecognized statement %q", text)
	}
	rest := strings.TrimSpace(text[len(name):])

	if name == ir.GateMeasure {
		parts := strings.SplitN(rest, "->", 2)
		if len(parts) != 2 {
			return nil, p.fail(line, "measure: expected 'q -> c'")
		}
		qs, err := p.bits(parts[0], ir.KindQuantum, line)
		if err != nil {
			return nil, err
		}
		cs, err := p.bits(parts[1], ir.KindClassical, line)
		if err != nil {
			return nil, err
		}
		if len(qs) != len(cs) {
			return nil, p.fail(line, "measure: register sizes differ (%d vs %d)", len(qs), len(cs))
		}
		gates := make([]ir.Gate, len(qs))
		for i := range qs {
			gates[i] = ir.Gate{Name: ir.GateMeasure, Qubits: []ir.Bit{qs[i]}, Clbits: []ir.Bit{cs[i]}}
		}
		return gates, nil
	}

	var params []float64
	if strings.HasPrefix(rest, "(") {
		end := matchParen(rest)
		if end < 0 {
			return nil, p.fail(line, "%s: unbalanced parentheses", name)
		}
		for _, expr := range splitTopLevel(rest[1:end]) {
			v, err := EvalParam(expr)
			if err != nil {
				return nil, p.fail(line, "%s: %v", name, err)
			}
			params = append(params, v)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	var args [][]ir.Bit
	width := 1
	for _, a := range splitTopLevel(rest) {
		bits, err := p.bits(a, ir.KindQuantum, line)
		if err != nil {
			return nil, err
		}
		if len(bits) > 1 {
			if width > 1 && len(bits) != width {
				return nil, p.fail(line, "%s: register sizes differ", name)
			}
			width = len(bits)
		}
		args = append(args, bits)
	}
	if len(args) == 0 {
		return nil, p.fail(line, "%s: missing qubit arguments", name)
	}

	if name == ir.GateBarrier {
		var all []ir.Bit
		for _, a := range args {
			all = append(all, a...)
		}
		return []ir.Gate{{Name: name, Qubits: all}}, nil
	}

	gates := make([]ir.Gate, width)
	for i := 0; i < width; i++ {
		qubits := make([]ir.Bit, len(args))
		for j, a := range args {
			if len(a) == 1 {
				qubits[j] = a[0]
			} else {
				qubits[j] = a[i]
			}
		}
		gates[i] = ir.Gate{Name: name, Params: append([]float64(nil), params...), Qubits: qubits}
	}
	return gates, nil
}

// bits resolves "r[i]" to one bit or "r" to every bit of the register.
func (p *parser) bits(arg string, kind ir.RegisterKind, line int) ([]ir.Bit, error) {
	m := argRegex.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return nil, p.fail(line, "bad argument %q", arg)
	}
	regs := p.circ.QuantumRegisters
	if kind == ir.KindClassical {
		regs = p.circ.ClassicalRegisters
	}
	for _, r := range regs {
		if r.Name != m[1] {
			continue
		}
		if m[2] == "" {
			out := make([]ir.Bit, r.Size)
			for i := range out {
				out[i] = r.Bit(i)
			}
			return out, nil
		}
		idx, _ := strconv.Atoi(m[2])
		if idx >= r.Size {
			return nil, p.fail(line, "%s[%d] out of range (size %d)", r.Name, idx, r.Size)
		}
		return []ir.Bit{r.Bit(idx)}, nil
	}
	return nil, p.fail(line, "unknown %s %q", kind, m[1])
}

func matchParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		out = append(out, last)
	}
	return out
}
