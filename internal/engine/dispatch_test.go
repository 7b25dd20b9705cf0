package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/remote"
	"github.com/roach88/qprog/internal/sim"
	"github.com/roach88/qprog/internal/testutil"
)

func TestRun_LocalSampling(t *testing.T) {
	p := New()
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout, WithShots(200), WithSeed(5))
	require.NoError(t, err)

	assert.Equal(t, DeviceLocalQASM, p.LastDevice())
	assert.Zero(t, p.QueueLen())

	counts, err := p.Counts("bell", "")
	require.NoError(t, err)
	assert.Equal(t, 200, counts.Total())
	for key := range counts {
		assert.Contains(t, []string{"00", "11"}, key)
	}

	rec, err := p.Execution("bell", DeviceLocalQASM)
	require.NoError(t, err)
	assert.Equal(t, ir.StatusCompleted, rec.Status)
	assert.Equal(t, DeviceLocalQASM, rec.Device)
}

func TestRun_LocalSamplingIsReproducible(t *testing.T) {
	run := func() ir.Counts {
		p := New()
		bell(t, p, "bell")
		require.NoError(t, p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout, WithShots(100), WithSeed(99)))
		counts, err := p.Counts("bell", "")
		require.NoError(t, err)
		return counts
	}
	assert.Equal(t, run(), run())
}

func TestRun_LocalUnitary(t *testing.T) {
	p := New()
	bell(t, p, "bell")

	require.NoError(t, p.Execute(context.Background(), []string{"bell"}, DeviceLocalUnitary, DefaultWait, DefaultTimeout, WithShots(1)))

	data, err := p.Data("bell", DeviceLocalUnitary)
	require.NoError(t, err)
	require.Len(t, data.Unitary, 4)
	assert.Len(t, data.Unitary[0], 4)

	_, err = p.Counts("bell", DeviceLocalUnitary)
	assert.True(t, IsNotFound(err), "unitary results carry no counts")
}

func TestRun_Remote(t *testing.T) {
	backend := &testutil.ScriptedBackend{
		States: []remote.JobState{remote.StateRunning, remote.StateRunning, remote.StateCompleted},
	}
	sleeper := testutil.NewFakeSleeper()
	p := New(WithBackend(backend), WithSleeper(sleeper))
	bell(t, p, "a")
	bell(t, p, "b")

	err := p.Execute(context.Background(), []string{"a", "b"}, "ibmqx2", time.Second, 5*time.Second, WithShots(16), WithMaxCredits(5))
	require.NoError(t, err)

	submitted := backend.Submitted()
	require.Len(t, submitted, 1, "one batch per device")
	assert.Equal(t, "ibmqx2", submitted[0].Device)
	assert.Equal(t, 16, submitted[0].Shots)
	assert.Equal(t, 5, submitted[0].MaxCredits)
	assert.Len(t, submitted[0].Qasms, 2)

	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.Sleeps())

	counts, err := p.Counts("b", "ibmqx2")
	require.NoError(t, err)
	assert.Equal(t, ir.Counts{"0": 16}, counts)
}

func TestRun_RemoteHeterogeneousBatch(t *testing.T) {
	backend := &testutil.ScriptedBackend{}
	p := New(WithBackend(backend))
	bell(t, p, "a")
	bell(t, p, "b")

	require.NoError(t, p.Compile([]string{"a"}, "ibmqx2", WithShots(10)))
	require.NoError(t, p.Compile([]string{"b"}, "ibmqx2", WithShots(20)))

	err := p.Run(context.Background(), DefaultWait, DefaultTimeout)
	require.Error(t, err)
	assert.True(t, IsBatchHeterogeneity(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "shots", e.Details["field"])
	assert.Equal(t, "10", e.Details["first"])
	assert.Equal(t, "20", e.Details["got"])

	assert.Empty(t, backend.Submitted(), "nothing is submitted")
	assert.Zero(t, p.QueueLen(), "queue is cleared on failure")
}

func TestRun_RemoteHeterogeneousCredits(t *testing.T) {
	p := New(WithBackend(&testutil.ScriptedBackend{}))
	bell(t, p, "a")

	require.NoError(t, p.Compile([]string{"a"}, "ibmqx2", WithMaxCredits(3)))
	require.NoError(t, p.Compile([]string{"a"}, "ibmqx2", WithMaxCredits(10)))

	err := p.Run(context.Background(), DefaultWait, DefaultTimeout)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrCodeBatchHeterogeneity, e.Code)
	assert.Equal(t, "max_credits", e.Details["field"])
}

func TestRun_RemoteWithoutBackend(t *testing.T) {
	p := New()
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, "ibmqx2", DefaultWait, DefaultTimeout)
	assert.True(t, IsRemoteSubmissionError(err))
}

func TestRun_RemoteSubmissionRejected(t *testing.T) {
	backend := &testutil.ScriptedBackend{
		SubmitErr: &remote.SubmissionError{Device: "ibmqx2", Message: "not enough credits"},
	}
	p := New(WithBackend(backend))
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, "ibmqx2", DefaultWait, DefaultTimeout)
	require.True(t, IsRemoteSubmissionError(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "not enough credits", e.Message)
	assert.Equal(t, "ibmqx2", e.Device)

	_, err = p.Execution("bell", "ibmqx2")
	assert.True(t, IsNotFound(err), "failed run records nothing")
}

func TestRun_RemoteJobError(t *testing.T) {
	backend := &testutil.ScriptedBackend{
		States: []remote.JobState{remote.StateRunning, remote.StateErrorRunningJob},
	}
	p := New(WithBackend(backend), WithSleeper(testutil.NewFakeSleeper()))
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, "ibmqx2", time.Second, 10*time.Second)
	require.True(t, IsRemoteJobError(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, string(remote.StateErrorRunningJob), e.Status)
	assert.Equal(t, "ibmqx2", e.Device)
}

func TestRun_RemoteTimeout(t *testing.T) {
	backend := &testutil.ScriptedBackend{States: []remote.JobState{remote.StateRunning}}
	sleeper := testutil.NewFakeSleeper()
	p := New(WithBackend(backend), WithSleeper(sleeper))
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, "ibmqx2", 2*time.Second, 5*time.Second)
	require.True(t, IsTimeout(err))
	assert.Equal(t, 6*time.Second, sleeper.Total())
	assert.Zero(t, p.QueueLen())
}

func TestRun_UnknownDevice(t *testing.T) {
	p := New()
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, "nowhere", DefaultWait, DefaultTimeout)
	require.True(t, IsUnknownDevice(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "nowhere", e.Device)
}

func TestRun_ResultCountMismatch(t *testing.T) {
	engine := &fakeEngine{results: []ir.JobResult{}}
	p := New(WithEngines(map[ir.DeviceClass]sim.Engine{ir.DeviceLocalSampling: engine}))
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout)
	require.True(t, IsResultCountMismatch(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "1", e.Details["jobs"])
	assert.Equal(t, "0", e.Details["results"])
}

func TestRun_RerunOverwritesRecord(t *testing.T) {
	p := New()
	bell(t, p, "bell")
	ctx := context.Background()

	require.NoError(t, p.Execute(ctx, []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout, WithShots(10)))
	require.NoError(t, p.Execute(ctx, []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout, WithShots(30)))

	rec, err := p.Execution("bell", DeviceLocalQASM)
	require.NoError(t, err)
	assert.Equal(t, 30, rec.Shots)
	assert.Equal(t, 30, rec.Result.Data.Counts.Total())
}

func TestRun_KeepsRecordsBeforeFailure(t *testing.T) {
	sink := &recordingSink{}
	p := New(WithRecordSink(sink))
	bell(t, p, "bell")

	require.NoError(t, p.Compile([]string{"bell"}, DeviceLocalQASM, WithShots(8)))
	require.NoError(t, p.Compile([]string{"bell"}, "ibmqx2"))

	err := p.Run(context.Background(), DefaultWait, DefaultTimeout)
	require.True(t, IsRemoteSubmissionError(err))

	_, err = p.Execution("bell", DeviceLocalQASM)
	assert.NoError(t, err)
	assert.Len(t, sink.records, 1)
	assert.Equal(t, "ibmqx2", p.LastDevice())
	assert.Zero(t, p.QueueLen())
}

func TestRun_HeterogeneityOnLaterDeviceClearsWholeQueue(t *testing.T) {
	backend := &testutil.ScriptedBackend{}
	p := New(WithBackend(backend))
	bell(t, p, "bell")

	require.NoError(t, p.Compile([]string{"bell"}, DeviceLocalQASM, WithShots(4)))
	require.NoError(t, p.Compile([]string{"bell"}, "ibmqx2", WithShots(10)))
	require.NoError(t, p.Compile([]string{"bell"}, "ibmqx2", WithShots(20)))
	require.NoError(t, p.Compile([]string{"bell"}, DeviceLocalUnitary))

	err := p.Run(context.Background(), DefaultWait, DefaultTimeout)
	require.True(t, IsBatchHeterogeneity(err))

	assert.Zero(t, p.QueueLen())
	assert.Empty(t, p.PendingDevices())
	assert.Empty(t, backend.Submitted())

	_, err = p.Execution("bell", DeviceLocalQASM)
	assert.NoError(t, err, "the device dispatched before the failure keeps its record")
	_, err = p.Execution("bell", DeviceLocalUnitary)
	assert.True(t, IsNotFound(err), "devices after the failure never run")
}

func TestRun_SinkFailure(t *testing.T) {
	p := New(WithRecordSink(&recordingSink{err: errors.New("disk full")}))
	bell(t, p, "bell")

	err := p.Execute(context.Background(), []string{"bell"}, DeviceLocalQASM, DefaultWait, DefaultTimeout, WithShots(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_InvalidWait(t *testing.T) {
	p := New()
	bell(t, p, "bell")
	require.NoError(t, p.Compile([]string{"bell"}, DeviceLocalQASM))

	err := p.Run(context.Background(), 0, DefaultTimeout)
	require.Error(t, err)
	assert.Zero(t, p.QueueLen())
}

func TestRun_EmptyQueue(t *testing.T) {
	sink := &recordingSink{}
	p := New(WithRecordSink(sink))

	require.NoError(t, p.Run(context.Background(), DefaultWait, DefaultTimeout))
	assert.Empty(t, sink.records)
	assert.Empty(t, p.LastDevice())
}
