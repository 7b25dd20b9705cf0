package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/remote"
)

// Run defaults, matching the hosted API's polling guidance.
const (
	DefaultWait    = 5 * time.Second
	DefaultTimeout = 60 * time.Second
)

// RecordSink receives every execution record written by Run. runID is
// shared by all records of one Run call; seq orders records globally.
type RecordSink interface {
	WriteRecord(ctx context.Context, runID string, seq int64, rec ir.ExecutionRecord) error
}

// Run drains the execution queue, dispatching each device's jobs in queue
// order and recording one ExecutionRecord per job.
//
// The queue is always empty when Run returns, whether it succeeded or not;
// after a failure the caller must compile again. Records written for devices
// drained before the failure are kept.
func (p *Program) Run(ctx context.Context, wait, timeout time.Duration) error {
	defer p.queue.Reset()

	if wait <= 0 {
		return fmt.Errorf("run: wait must be positive, got %s", wait)
	}
	if timeout < 0 {
		return fmt.Errorf("run: timeout must not be negative, got %s", timeout)
	}

	runID := p.runIDs.Generate()
	p.lastRunID = runID
	for _, device := range p.queue.Devices() {
		jobs := p.queue.Jobs(device)
		p.lastDevice = device
		slog.Info("running on backend", "device", device, "jobs", len(jobs), "run_id", runID)

		results, err := p.dispatch(ctx, device, jobs, wait, timeout)
		if err != nil {
			return err
		}
		if len(results) != len(jobs) {
			return &Error{
				Code:    ErrCodeResultCountMismatch,
				Message: "internal error: result count does not match job count",
				Device:  device,
				Details: map[string]string{
					"jobs":    strconv.Itoa(len(jobs)),
					"results": strconv.Itoa(len(results)),
				},
			}
		}

		for i, job := range jobs {
			rec := ir.ExecutionRecord{
				CompiledJob: job,
				Device:      device,
				Result:      results[i].Result,
				Status:      results[i].Status,
			}
			if err := p.catalog.record(rec); err != nil {
				return err
			}
			if p.sink != nil {
				if err := p.sink.WriteRecord(ctx, runID, p.clock.Next(), rec); err != nil {
					return fmt.Errorf("record %q on %s: %w", job.Circuit, device, err)
				}
			}
		}
	}
	return nil
}

// Execute compiles names for device and runs the whole queue.
func (p *Program) Execute(ctx context.Context, names []string, device string, wait, timeout time.Duration, opts ...CompileOption) error {
	if err := p.Compile(names, device, opts...); err != nil {
		return err
	}
	return p.Run(ctx, wait, timeout)
}

func (p *Program) dispatch(ctx context.Context, device string, jobs []ir.CompiledJob, wait, timeout time.Duration) ([]ir.JobResult, error) {
	class := p.DeviceClass(device)
	switch {
	case class == ir.DeviceRemote:
		return p.dispatchRemote(ctx, device, jobs, wait, timeout)
	case class.IsLocal():
		engine, ok := p.engines[class]
		if !ok {
			break
		}
		return engine.Run(ctx, jobs)
	}
	return nil, &Error{
		Code:    ErrCodeUnknownDevice,
		Message: "device is neither a remote backend nor a local simulator",
		Device:  device,
	}
}

func (p *Program) dispatchRemote(ctx context.Context, device string, jobs []ir.CompiledJob, wait, timeout time.Duration) ([]ir.JobResult, error) {
	batch := remote.Batch{Device: device}
	for i, job := range jobs {
		if i == 0 {
			batch.Shots, batch.MaxCredits = job.Shots, job.MaxCredits
		}
		if job.Shots != batch.Shots {
			return nil, heterogeneityError(device, "shots", batch.Shots, job.Shots)
		}
		if job.MaxCredits != batch.MaxCredits {
			return nil, heterogeneityError(device, "max_credits", batch.MaxCredits, job.MaxCredits)
		}
		batch.Qasms = append(batch.Qasms, job.CompiledSource)
	}

	if p.backend == nil {
		return nil, &Error{
			Code:    ErrCodeRemoteSubmission,
			Message: "no remote backend configured; set an API token",
			Device:  device,
		}
	}
	id, err := p.backend.SubmitBatch(ctx, batch)
	if err != nil {
		e := &Error{Code: ErrCodeRemoteSubmission, Message: "batch submission failed", Device: device, Err: err}
		var se *remote.SubmissionError
		if errors.As(err, &se) {
			e.Message = se.Message
		}
		return nil, e
	}

	status, err := NewPoller(p.backend, p.sleeper).WaitForJob(ctx, id, wait, timeout)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Device == "" {
			e.Device = device
		}
		return nil, err
	}

	results := make([]ir.JobResult, len(status.Qasms))
	for i, q := range status.Qasms {
		results[i] = ir.JobResult{Result: q.Result, Status: q.Status}
	}
	return results, nil
}

func heterogeneityError(device, field string, first, got int) *Error {
	return &Error{
		Code:    ErrCodeBatchHeterogeneity,
		Message: fmt.Sprintf("remote devices only support batches with equal %s", field),
		Device:  device,
		Details: map[string]string{
			"field": field,
			"first": strconv.Itoa(first),
			"got":   strconv.Itoa(got),
		},
	}
}
