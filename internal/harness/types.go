package harness

// TraceEvent is one execution record as written to the history.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	RunID   string         `json:"run_id"`
	Circuit string         `json:"circuit"`
	Device  string         `json:"device"`
	Status  string         `json:"status"`
	Shots   int            `json:"shots"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace holds the history rows in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
