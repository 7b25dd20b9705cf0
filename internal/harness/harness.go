package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/qprog/internal/config"
	"github.com/roach88/qprog/internal/engine"
	"github.com/roach88/qprog/internal/remote"
	"github.com/roach88/qprog/internal/store"
	"github.com/roach88/qprog/internal/testutil"
)

const defaultRunID = "scenario"

// Harness holds the collaborators of one scenario execution.
type Harness struct {
	program *engine.Program
	store   *store.Store
	backend *testutil.ScriptedBackend
	sleeper *testutil.FakeSleeper
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Run returns an error
// only when the scenario cannot be set up; step and assertion failures are
// reported in the Result.
//
// Execution flow:
//  1. Open an in-memory history and build a Program on scripted
//     collaborators
//  2. Initialise the Program from the scenario's spec
//  3. Execute the steps, matching expected errors
//  4. Read the history back as the trace
//  5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	spec, err := config.Load(scenario.Spec)
	if err != nil {
		return nil, err
	}
	// Scenarios never reach a real backend.
	spec.API = nil

	h := newHarness(scenario, st)
	if err := h.program.InitSpecs(spec); err != nil {
		return nil, fmt.Errorf("failed to initialise program: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		err := h.executeStep(ctx, spec, step)
		if msg := checkStepError(step, err); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d]: %s", i, msg))
		}
	}

	entries, err := st.ReadHistory(ctx, store.HistoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	for _, e := range entries {
		event := TraceEvent{
			Seq:     e.Seq,
			RunID:   e.RunID,
			Circuit: e.Record.Circuit,
			Device:  e.Record.Device,
			Status:  string(e.Record.Status),
			Shots:   e.Record.Shots,
		}
		if e.Record.Result != nil && len(e.Record.Result.Data.Counts) > 0 {
			event.Counts = e.Record.Result.Data.Counts
		}
		result.Trace = append(result.Trace, event)
	}

	actx := &AssertionContext{Program: h.program, Sleeper: h.sleeper, Trace: result.Trace}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(scenario *Scenario, st *store.Store) *Harness {
	backend := &testutil.ScriptedBackend{}
	if scenario.Backend != nil {
		backend.States = scenario.Backend.States
		if scenario.Backend.Reject != "" {
			backend.SubmitErr = &remote.SubmissionError{Message: scenario.Backend.Reject}
		}
	}
	sleeper := testutil.NewFakeSleeper()

	prefix := scenario.RunID
	if prefix == "" {
		prefix = defaultRunID
	}
	var ids []string
	for _, step := range scenario.Steps {
		if step.Run != nil {
			ids = append(ids, fmt.Sprintf("%s-%d", prefix, len(ids)+1))
		}
	}

	program := engine.New(
		engine.WithBackend(backend),
		engine.WithSleeper(sleeper),
		engine.WithRecordSink(st),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(ids...)),
		engine.WithSeedSource(testutil.NewFixedSeeds(1)),
	)
	return &Harness{program: program, store: st, backend: backend, sleeper: sleeper}
}

func (h *Harness) executeStep(ctx context.Context, spec *config.ProgramSpec, step Step) error {
	if step.Compile != nil {
		c := step.Compile
		names := c.Circuits
		if len(names) == 0 {
			names = spec.CircuitNames()
		}
		var opts []engine.CompileOption
		if c.Shots != 0 {
			opts = append(opts, engine.WithShots(c.Shots))
		}
		if c.MaxCredits != 0 {
			opts = append(opts, engine.WithMaxCredits(c.MaxCredits))
		}
		if c.Seed != nil {
			opts = append(opts, engine.WithSeed(*c.Seed))
		}
		return h.program.Compile(names, c.Device, opts...)
	}

	wait, timeout := engine.DefaultWait, engine.DefaultTimeout
	if step.Run.Wait > 0 {
		wait = time.Duration(step.Run.Wait) * time.Second
	}
	if step.Run.Timeout > 0 {
		timeout = time.Duration(step.Run.Timeout) * time.Second
	}
	return h.program.Run(ctx, wait, timeout)
}

// checkStepError compares a step's error with its expectation and returns
// a failure message, or "" when the step behaved as expected.
func checkStepError(step Step, err error) string {
	switch {
	case err == nil && step.ExpectError == "":
		return ""
	case err == nil:
		return fmt.Sprintf("expected error %s, got success", step.ExpectError)
	case step.ExpectError == "":
		return fmt.Sprintf("unexpected error: %v", err)
	}
	if code := errorCode(err); code != step.ExpectError {
		return fmt.Sprintf("expected error %s, got %s: %v", step.ExpectError, code, err)
	}
	return ""
}

// errorCode returns the engine error code of err, or "ERROR" for errors
// that carry none.
func errorCode(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "ERROR"
}
