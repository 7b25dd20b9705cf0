package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/qprog/internal/config"
	"github.com/roach88/qprog/internal/remote"
)

// APIConfig holds the credentials of the remote backend.
type APIConfig struct {
	Token string
	URL   string
}

// SetAPI points the Program at the hosted API, replacing any backend set
// earlier. Empty arguments keep the current value; an empty URL with no
// current value means remote.DefaultURL.
func (p *Program) SetAPI(token, url string) error {
	if token == "" {
		token = p.api.Token
	}
	if url == "" {
		url = p.api.URL
	}
	if url == "" {
		url = remote.DefaultURL
	}
	if token == "" {
		return fmt.Errorf("set api: token is required")
	}

	p.api = APIConfig{Token: token, URL: url}
	p.backend = remote.NewClient(token, url)
	slog.Debug("remote api configured", "url", url)
	return nil
}

// APIConfig returns the current API settings.
func (p *Program) APIConfig() APIConfig {
	return p.api
}

// InitSpecs populates registers, circuits and API settings from spec.
//
// Circuits with a qasm or qasm_file source are parsed; the rest are created
// empty over their listed registers. The single-circuit form creates one
// quantum and one classical register and a circuit over both.
func (p *Program) InitSpecs(spec *config.ProgramSpec) error {
	if spec.API != nil && spec.API.Token != "" {
		if err := p.SetAPI(spec.API.Token, spec.API.URL); err != nil {
			return err
		}
	}

	if len(spec.Circuits) == 0 {
		if spec.QuantumRegisters == nil || spec.ClassicalRegisters == nil {
			return nil
		}
		q, err := p.CreateQuantumRegister(spec.QuantumRegisters.Name, spec.QuantumRegisters.Size)
		if err != nil {
			return err
		}
		c, err := p.CreateClassicalRegister(spec.ClassicalRegisters.Name, spec.ClassicalRegisters.Size)
		if err != nil {
			return err
		}
		_, err = p.CreateCircuit(spec.Name, []string{q.Name}, []string{c.Name})
		return err
	}

	for _, cs := range spec.Circuits {
		if err := p.initCircuit(spec, cs); err != nil {
			return fmt.Errorf("circuit %q: %w", cs.Name, err)
		}
	}
	return nil
}

func (p *Program) initCircuit(spec *config.ProgramSpec, cs config.CircuitSpec) error {
	switch {
	case cs.QASM != "":
		_, err := p.LoadQASM(cs.Name, cs.QASM)
		return err
	case cs.QASMFile != "":
		_, err := p.LoadQASMFile(cs.Name, spec.QASMPath(cs))
		return err
	}

	qregs, err := p.CreateQuantumRegisterGroup(registerSpecs(cs.QuantumRegisters))
	if err != nil {
		return err
	}
	cregs, err := p.CreateClassicalRegisterGroup(registerSpecs(cs.ClassicalRegisters))
	if err != nil {
		return err
	}

	qnames := make([]string, len(qregs))
	for i, r := range qregs {
		qnames[i] = r.Name
	}
	cnames := make([]string, len(cregs))
	for i, r := range cregs {
		cnames[i] = r.Name
	}
	_, err = p.CreateCircuit(cs.Name, qnames, cnames)
	return err
}

func registerSpecs(in []config.RegisterSpec) []RegisterSpec {
	out := make([]RegisterSpec, len(in))
	for i, r := range in {
		out[i] = RegisterSpec{Name: r.Name, Size: r.Size}
	}
	return out
}
