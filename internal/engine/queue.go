package engine

import "github.com/roach88/qprog/internal/ir"

// executionQueue holds compiled jobs awaiting dispatch, grouped by device.
//
// Devices are drained in the order they were first queued; jobs within a
// device keep their compile order. The queue is owned by one Program and is
// not safe for concurrent use.
type executionQueue struct {
	order []string
	jobs  map[string][]ir.CompiledJob
}

// newExecutionQueue creates an empty queue.
func newExecutionQueue() *executionQueue {
	return &executionQueue{jobs: make(map[string][]ir.CompiledJob)}
}

// Append adds jobs for device, creating the device entry if absent.
func (q *executionQueue) Append(device string, jobs ...ir.CompiledJob) {
	if _, ok := q.jobs[device]; !ok {
		q.order = append(q.order, device)
	}
	q.jobs[device] = append(q.jobs[device], jobs...)
}

// Devices returns the queued devices in insertion order.
func (q *executionQueue) Devices() []string {
	return append([]string(nil), q.order...)
}

// Jobs returns the jobs queued for device.
func (q *executionQueue) Jobs(device string) []ir.CompiledJob {
	return q.jobs[device]
}

// Len returns the total number of queued jobs across devices.
func (q *executionQueue) Len() int {
	n := 0
	for _, jobs := range q.jobs {
		n += len(jobs)
	}
	return n
}

// Reset empties the queue.
func (q *executionQueue) Reset() {
	q.order = nil
	q.jobs = make(map[string][]ir.CompiledJob)
}
