package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qprog/internal/remote"
)

// Scenario is one scripted session against a program spec.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Spec is the program spec path. LoadScenario resolves it against the
	// scenario file's directory.
	Spec string `yaml:"spec"`

	// RunID prefixes the run ids of Run steps. Default: "scenario".
	RunID string `yaml:"run_id,omitempty"`

	// Backend scripts the remote backend. Nil means every remote job
	// completes on the first status query.
	Backend *BackendScript `yaml:"backend,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// BackendScript configures the scripted remote backend.
type BackendScript struct {
	// States is the status sequence reported for every job; the last one
	// repeats.
	States []remote.JobState `yaml:"states,omitempty"`

	// Reject, when set, makes every submission fail with this message.
	Reject string `yaml:"reject,omitempty"`
}

// Step is a compile or a run. Exactly one of Compile and Run is set.
type Step struct {
	Compile *CompileStep `yaml:"compile,omitempty"`
	Run     *RunStep     `yaml:"run,omitempty"`

	// ExpectError is the engine error code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// CompileStep compiles circuits for a device. Empty Circuits means every
// circuit the spec declares.
type CompileStep struct {
	Device     string   `yaml:"device"`
	Circuits   []string `yaml:"circuits,omitempty"`
	Shots      int      `yaml:"shots,omitempty"`
	MaxCredits int      `yaml:"max_credits,omitempty"`
	Seed       *int64   `yaml:"seed,omitempty"`
}

// RunStep drains the queue. Wait and Timeout are seconds; zero means the
// engine default.
type RunStep struct {
	Wait    int `yaml:"wait,omitempty"`
	Timeout int `yaml:"timeout,omitempty"`
}

// Assertion checks the program or the trace after the steps ran.
type Assertion struct {
	Type string `yaml:"type"`

	Circuit string `yaml:"circuit,omitempty"`
	Device  string `yaml:"device,omitempty"`

	// Expect is the exact counts table (counts).
	Expect map[string]int `yaml:"expect,omitempty"`

	// Count is the expected number (counts_total, record_count, sleep_count).
	Count int `yaml:"count,omitempty"`

	// Status is the expected record status (status).
	Status string `yaml:"status,omitempty"`

	// Observable, Value and Tolerance configure average.
	Observable map[string]float64 `yaml:"observable,omitempty"`
	Value      float64            `yaml:"value,omitempty"`
	Tolerance  float64            `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertCounts      = "counts"
	AssertCountsTotal = "counts_total"
	AssertStatus      = "status"
	AssertRecordCount = "record_count"
	AssertSleepCount  = "sleep_count"
	AssertAverage     = "average"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Spec != "" && !filepath.IsAbs(scenario.Spec) {
		scenario.Spec = filepath.Join(filepath.Dir(path), scenario.Spec)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := os.Stat(s.Spec); os.IsNotExist(err) {
		return fmt.Errorf("spec file not found: %s", s.Spec)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if (step.Compile == nil) == (step.Run == nil) {
			return fmt.Errorf("steps[%d]: exactly one of compile and run is required", i)
		}
		if step.Run != nil && (step.Run.Wait < 0 || step.Run.Timeout < 0) {
			return fmt.Errorf("steps[%d].run: wait and timeout must not be negative", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	needsTarget := func() error {
		if a.Circuit == "" {
			return fmt.Errorf("assertions[%d]: circuit is required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCounts:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for counts", index)
		}
		return needsTarget()
	case AssertCountsTotal:
		return needsTarget()
	case AssertStatus:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for status", index)
		}
		return needsTarget()
	case AssertAverage:
		if len(a.Observable) == 0 {
			return fmt.Errorf("assertions[%d]: observable is required for average", index)
		}
		return needsTarget()
	case AssertRecordCount, AssertSleepCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		return nil
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
}
