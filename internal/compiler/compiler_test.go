package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
)

type fixedSeed int64

func (s fixedSeed) NextSeed() int64 { return int64(s) }

func bell(t *testing.T) *ir.Circuit {
	t.Helper()
	c := newCircuit(t, "bell", 2, 2)
	require.NoError(t, c.Apply("h", nil, q(0)))
	require.NoError(t, c.Apply("cx", nil, q(0), q(1)))
	require.NoError(t, c.Measure(q(0), cb(0)))
	require.NoError(t, c.Measure(q(1), cb(1)))
	return c
}

func TestCompile_Local(t *testing.T) {
	comp := New(WithSeedSource(fixedSeed(42)))

	job, err := comp.Compile(bell(t), Target{Class: ir.DeviceLocalSampling, Shots: 1024, MaxCredits: 3})
	require.NoError(t, err)

	assert.Equal(t, "bell", job.Circuit)
	assert.Equal(t, ir.DefaultBasis(), job.BasisGates)
	assert.Equal(t, "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[2];\ncreg c[2];\n"+
		"u2(0,pi) q[0];\ncx q[0],q[1];\nmeasure q[0] -> c[0];\nmeasure q[1] -> c[1];\n", job.CompiledSource)
	require.NotNil(t, job.Local)
	assert.Len(t, job.Local.Ops, 4)
	require.NotNil(t, job.Seed)
	assert.Equal(t, int64(42), *job.Seed)
}

func TestCompile_ExplicitSeedWins(t *testing.T) {
	seed := int64(7)
	job, err := New(WithSeedSource(fixedSeed(42))).Compile(bell(t), Target{
		Class: ir.DeviceLocalUnitary, Shots: 1, Seed: &seed,
	})
	require.NoError(t, err)

	require.NotNil(t, job.Seed)
	assert.Equal(t, int64(7), *job.Seed)
	seed = 8
	assert.Equal(t, int64(7), *job.Seed, "seed is copied")
}

func TestCompile_RemoteHasNoLocalForm(t *testing.T) {
	job, err := New().Compile(bell(t), Target{Class: ir.DeviceRemote, Shots: 1024, MaxCredits: 3})
	require.NoError(t, err)

	assert.Nil(t, job.Local)
	assert.Nil(t, job.Seed)
}

func TestCompile_WithCouplingMap(t *testing.T) {
	job, err := New().Compile(bell(t), Target{
		Class:       ir.DeviceRemote,
		Shots:       1024,
		CouplingMap: ir.CouplingMap{1: {0}, 2: {1}},
	})
	require.NoError(t, err)

	assert.Contains(t, job.CompiledSource, "qreg q[3];")
	assert.Contains(t, job.CompiledSource, "cx q[1],q[0];")
	assert.NotContains(t, job.CompiledSource, "cx q[0],q[1];")
	assert.Equal(t, ir.CouplingMap{1: {0}, 2: {1}}, job.CouplingMap)
}

func TestCompile_UnknownGate(t *testing.T) {
	c := newCircuit(t, "bad", 1, 0)
	require.NoError(t, c.Apply("frobnicate", nil, q(0)))

	_, err := New().Compile(c, Target{Class: ir.DeviceRemote, Shots: 1})
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "bad", compileErr.Circuit)
	assert.Equal(t, "unroll", compileErr.Stage)
}

func TestCompile_InvalidShots(t *testing.T) {
	_, err := New().Compile(bell(t), Target{Class: ir.DeviceRemote, Shots: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shots must be >= 1")
}

type recordingMapper struct {
	CouplingMapper
	calls []string
}

func (m *recordingMapper) SwapMapper(c *ir.Circuit, cp *Coupling) (*ir.Circuit, Layout, error) {
	m.calls = append(m.calls, "swap")
	return m.CouplingMapper.SwapMapper(c, cp)
}

func (m *recordingMapper) DirectionMapper(c *ir.Circuit, cp *Coupling) (*ir.Circuit, error) {
	m.calls = append(m.calls, "direction")
	return m.CouplingMapper.DirectionMapper(c, cp)
}

func (m *recordingMapper) CXCancellation(c *ir.Circuit) *ir.Circuit {
	m.calls = append(m.calls, "cancel")
	return m.CouplingMapper.CXCancellation(c)
}

func (m *recordingMapper) Optimize1Q(c *ir.Circuit) (*ir.Circuit, error) {
	m.calls = append(m.calls, "optimize")
	return m.CouplingMapper.Optimize1Q(c)
}

func TestCompile_MapperPassOrder(t *testing.T) {
	rec := &recordingMapper{}
	_, err := New(WithMapper(rec)).Compile(bell(t), Target{
		Class: ir.DeviceRemote, Shots: 1, CouplingMap: ir.CouplingMap{0: {1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"swap", "direction", "cancel", "optimize"}, rec.calls)
}
