package harness

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/roach88/qprog/internal/engine"
	"github.com/roach88/qprog/internal/testutil"
)

// AssertionContext is what assertions are evaluated against.
type AssertionContext struct {
	Program *engine.Program
	Sleeper *testutil.FakeSleeper
	Trace   []TraceEvent
}

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s on %s: %s %v\n", event.Seq, event.Circuit, event.Device, event.Status, event.Counts)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(a Assertion, actx *AssertionContext) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: actx.Trace}
	}

	switch a.Type {
	case AssertCounts:
		counts, err := actx.Program.Counts(a.Circuit, a.Device)
		if err != nil {
			return fail(fmt.Sprintf("counts %v", a.Expect), err.Error())
		}
		if !maps.Equal(map[string]int(counts), a.Expect) {
			return fail(fmt.Sprintf("counts %v", a.Expect), fmt.Sprintf("counts %v", counts))
		}

	case AssertCountsTotal:
		counts, err := actx.Program.Counts(a.Circuit, a.Device)
		if err != nil {
			return fail(fmt.Sprintf("%d shots", a.Count), err.Error())
		}
		if counts.Total() != a.Count {
			return fail(fmt.Sprintf("%d shots", a.Count), fmt.Sprintf("%d shots", counts.Total()))
		}

	case AssertStatus:
		rec, err := actx.Program.Execution(a.Circuit, a.Device)
		if err != nil {
			return fail("status "+a.Status, err.Error())
		}
		if string(rec.Status) != a.Status {
			return fail("status "+a.Status, "status "+string(rec.Status))
		}

	case AssertRecordCount:
		if len(actx.Trace) != a.Count {
			return fail(fmt.Sprintf("%d records", a.Count), fmt.Sprintf("%d records", len(actx.Trace)))
		}

	case AssertSleepCount:
		if n := len(actx.Sleeper.Sleeps()); n != a.Count {
			return fail(fmt.Sprintf("%d sleeps", a.Count), fmt.Sprintf("%d sleeps", n))
		}

	case AssertAverage:
		got, err := actx.Program.AverageData(a.Circuit, a.Observable)
		if err != nil {
			return fail(fmt.Sprintf("average %g", a.Value), err.Error())
		}
		if math.Abs(got-a.Value) > a.Tolerance {
			return fail(fmt.Sprintf("average %g ± %g", a.Value, a.Tolerance), fmt.Sprintf("average %g", got))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
