package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CUEError is a CUE evaluation or decoding failure with its source position.
type CUEError struct {
	Message string
	Pos     token.Pos
}

func (e *CUEError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadCUEFile reads a single CUE file.
func LoadCUEFile(path string) (*ProgramSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	spec, err := ParseCUE(data, path)
	if err != nil {
		return nil, err
	}
	spec.BaseDir = filepath.Dir(path)
	return spec, nil
}

// ParseCUE evaluates CUE source from memory. filename is used in error
// positions only.
func ParseCUE(data []byte, filename string) (*ProgramSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	return decodeCUE(v)
}

// LoadCUEDir loads the CUE package in dir, unifying all its files.
func LoadCUEDir(dir string) (*ProgramSpec, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	spec, err := decodeCUE(ctx.BuildInstance(inst))
	if err != nil {
		return nil, err
	}
	spec.BaseDir = dir
	return spec, nil
}

// decodeCUE requires a concrete value and decodes it through its JSON form,
// which keeps integer-keyed maps such as coupling_map decodable.
func decodeCUE(v cue.Value) (*ProgramSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var spec ProgramSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode CUE spec: %w", err)
	}
	return &spec, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	cueErr := &CUEError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		cueErr.Pos = positions[0]
	}
	return cueErr
}
