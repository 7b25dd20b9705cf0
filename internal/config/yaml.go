package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML spec. Unknown fields are rejected so typos such as
// "circuit:" for "circuits:" fail loudly.
func LoadYAML(path string) (*ProgramSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	spec, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	spec.BaseDir = filepath.Dir(path)
	return spec, nil
}

// ParseYAML decodes a YAML spec from memory.
func ParseYAML(data []byte) (*ProgramSpec, error) {
	var spec ProgramSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &spec, nil
}
