package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/qprog/internal/remote"
)

// Sleeper blocks for a duration. The poller's only suspension point goes
// through it.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper sleeps on the wall clock, returning early with ctx.Err() if
// the context ends first.
type RealSleeper struct{}

// Sleep implements Sleeper.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusSource fetches the status of a remote job.
type StatusSource interface {
	JobStatus(ctx context.Context, id string) (*remote.JobStatus, error)
}

// Poller waits for remote jobs to leave the RUNNING state.
//
// Status is checked at multiples of wait: after each sleep the elapsed time
// grows by exactly wait, and the job times out once elapsed reaches timeout
// while the job is still running. When wait does not divide timeout the
// last sleep overshoots timeout by less than wait.
type Poller struct {
	source  StatusSource
	sleeper Sleeper
}

// NewPoller creates a Poller.
func NewPoller(source StatusSource, sleeper Sleeper) *Poller {
	return &Poller{source: source, sleeper: sleeper}
}

// WaitForJob polls job id until it is no longer RUNNING.
//
// Terminal error states fail with a REMOTE_JOB_ERROR carrying the status.
// Any other non-running status, COMPLETED included, is returned as-is.
func (p *Poller) WaitForJob(ctx context.Context, id string, wait, timeout time.Duration) (*remote.JobStatus, error) {
	if wait <= 0 {
		return nil, fmt.Errorf("poll job %s: wait must be positive, got %s", id, wait)
	}

	status, err := p.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	var elapsed time.Duration
	for status.Status == remote.StateRunning {
		if elapsed >= timeout {
			return nil, NewTimeoutError(id, elapsed, timeout)
		}
		if err := p.sleeper.Sleep(ctx, wait); err != nil {
			return nil, err
		}
		elapsed += wait
		slog.Info("remote job status", "id", id, "status", string(status.Status), "elapsed", elapsed)

		if status, err = p.fetch(ctx, id); err != nil {
			return nil, err
		}
	}
	return status, nil
}

func (p *Poller) fetch(ctx context.Context, id string) (*remote.JobStatus, error) {
	status, err := p.source.JobStatus(ctx, id)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeRemoteJob,
			Message: fmt.Sprintf("status query for job %s failed", id),
			Details: map[string]string{"job_id": id},
			Err:     err,
		}
	}
	if status.Status.IsError() {
		return nil, NewRemoteJobError(id, string(status.Status))
	}
	return status, nil
}
