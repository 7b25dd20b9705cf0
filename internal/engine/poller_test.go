package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/remote"
	"github.com/roach88/qprog/internal/testutil"
)

// submitted returns a backend scripted with states and the id of one job.
func submitted(t *testing.T, states ...remote.JobState) (*testutil.ScriptedBackend, string) {
	t.Helper()
	b := &testutil.ScriptedBackend{States: states}
	id, err := b.SubmitBatch(context.Background(), remote.Batch{Device: "ibmqx2", Shots: 1, Qasms: []string{"x"}})
	require.NoError(t, err)
	return b, id
}

func TestPoller_CompletesAfterTwoSleeps(t *testing.T) {
	b, id := submitted(t, remote.StateRunning, remote.StateRunning, remote.StateCompleted)
	sleeper := testutil.NewFakeSleeper()

	status, err := NewPoller(b, sleeper).WaitForJob(context.Background(), id, time.Second, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, remote.StateCompleted, status.Status)
	assert.Len(t, status.Qasms, 1)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.Sleeps())
	assert.Equal(t, 3, b.StatusCalls())
}

func TestPoller_AlreadyComplete(t *testing.T) {
	b, id := submitted(t)
	sleeper := testutil.NewFakeSleeper()

	_, err := NewPoller(b, sleeper).WaitForJob(context.Background(), id, time.Second, 0)
	require.NoError(t, err)
	assert.Empty(t, sleeper.Sleeps())
}

func TestPoller_Timeout(t *testing.T) {
	tests := []struct {
		name       string
		wait       time.Duration
		timeout    time.Duration
		wantSleeps int
	}{
		{name: "wait divides timeout", wait: time.Second, timeout: 3 * time.Second, wantSleeps: 3},
		{name: "last sleep overshoots", wait: 2 * time.Second, timeout: 5 * time.Second, wantSleeps: 3},
		{name: "zero timeout", wait: time.Second, timeout: 0, wantSleeps: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, id := submitted(t, remote.StateRunning)
			sleeper := testutil.NewFakeSleeper()

			_, err := NewPoller(b, sleeper).WaitForJob(context.Background(), id, tt.wait, tt.timeout)
			require.True(t, IsTimeout(err), "got %v", err)
			assert.Len(t, sleeper.Sleeps(), tt.wantSleeps)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, id, e.Details["job_id"])
			assert.Equal(t, tt.timeout.String(), e.Details["timeout"])
		})
	}
}

func TestPoller_ErrorStates(t *testing.T) {
	for _, state := range []remote.JobState{remote.StateErrorCreatingJob, remote.StateErrorRunningJob} {
		t.Run(string(state), func(t *testing.T) {
			b, id := submitted(t, state)
			sleeper := testutil.NewFakeSleeper()

			_, err := NewPoller(b, sleeper).WaitForJob(context.Background(), id, time.Second, time.Minute)
			require.True(t, IsRemoteJobError(err))
			assert.Empty(t, sleeper.Sleeps(), "the first status is checked too")

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, string(state), e.Status)
		})
	}
}

func TestPoller_TransportError(t *testing.T) {
	b, id := submitted(t)
	cause := errors.New("connection refused")
	b.StatusErr = cause

	_, err := NewPoller(b, testutil.NewFakeSleeper()).WaitForJob(context.Background(), id, time.Second, time.Minute)
	assert.True(t, IsRemoteJobError(err))
	assert.ErrorIs(t, err, cause)
}

func TestPoller_UnknownStatusReturned(t *testing.T) {
	b, id := submitted(t, remote.JobState("CANCELLED"))

	status, err := NewPoller(b, testutil.NewFakeSleeper()).WaitForJob(context.Background(), id, time.Second, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, remote.JobState("CANCELLED"), status.Status)
}

func TestPoller_RejectsNonPositiveWait(t *testing.T) {
	b, id := submitted(t)

	_, err := NewPoller(b, testutil.NewFakeSleeper()).WaitForJob(context.Background(), id, 0, time.Minute)
	assert.Error(t, err)
	assert.Zero(t, b.StatusCalls())
}

func TestPoller_ContextCancelled(t *testing.T) {
	b, id := submitted(t, remote.StateRunning)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPoller(b, testutil.NewFakeSleeper()).WaitForJob(ctx, id, time.Second, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRealSleeper_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RealSleeper{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
