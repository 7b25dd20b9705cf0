package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/qprog/internal/ir"
)

// Engine runs a batch of local jobs and returns one JobResult per job, in
// job order. The error return is reserved for context cancellation; job
// failures are reported as StatusFail entries.
type Engine interface {
	Run(ctx context.Context, jobs []ir.CompiledJob) ([]ir.JobResult, error)
}

// jobFunc simulates a single job.
type jobFunc func(ctx context.Context, job ir.CompiledJob) (*ir.Result, error)

// runBatch isolates per-job failures.
func runBatch(ctx context.Context, engine string, jobs []ir.CompiledJob, run jobFunc) ([]ir.JobResult, error) {
	results := make([]ir.JobResult, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		res, err := run(ctx, job)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("local job failed", "engine", engine, "circuit", job.Circuit, "error", err)
			results = append(results, ir.JobResult{Status: ir.StatusFail})
			continue
		}
		res.Data.Time = time.Since(start).Seconds()
		slog.Debug("local job completed", "engine", engine, "circuit", job.Circuit, "time", res.Data.Time)
		results = append(results, ir.JobResult{Result: res, Status: ir.StatusCompleted})
	}
	return results, nil
}

func localForm(job ir.CompiledJob) (*ir.LocalForm, error) {
	if job.Local == nil {
		return nil, fmt.Errorf("job %q has no local execution form", job.Circuit)
	}
	return job.Local, nil
}
