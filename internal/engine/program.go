package engine

import (
	"slices"

	"github.com/roach88/qprog/internal/compiler"
	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/remote"
	"github.com/roach88/qprog/internal/sim"
)

// Local device names.
const (
	DeviceLocalQASM    = "local_qasm_simulator"
	DeviceLocalUnitary = "local_unitary_simulator"
)

// DefaultDevice is used when Compile is given an empty device name.
const DefaultDevice = "simulator"

// DefaultRemoteDevices are the hosted backends known without configuration.
var DefaultRemoteDevices = []string{"real", "ibmqx2", "ibmqx3", "simulator", "ibmqx_qasm_simulator"}

// Program is the orchestrator: it owns the register store, circuit catalog,
// execution queue, per-circuit results and the last-used device.
//
// A Program is not safe for concurrent use. All operations are synchronous
// and assume a single caller; independent Programs share no state.
type Program struct {
	registers  *registerStore
	catalog    *catalog
	queue      *executionQueue
	lastDevice string
	lastRunID  string

	devices  map[string]ir.DeviceClass
	compiler *compiler.Compiler
	seeds    compiler.SeedSource
	engines  map[ir.DeviceClass]sim.Engine
	backend  remote.Backend
	api      APIConfig
	sleeper  Sleeper
	sink     RecordSink
	runIDs   RunIDGenerator
	clock    *Clock
}

// Option configures a Program.
type Option func(*Program)

// WithBackend sets the remote backend used for hosted devices.
func WithBackend(b remote.Backend) Option {
	return func(p *Program) { p.backend = b }
}

// WithRemoteDevices replaces the set of device names routed to the remote
// backend.
func WithRemoteDevices(names ...string) Option {
	return func(p *Program) {
		for name, class := range p.devices {
			if class == ir.DeviceRemote {
				delete(p.devices, name)
			}
		}
		for _, name := range names {
			p.devices[name] = ir.DeviceRemote
		}
	}
}

// WithSleeper sets how the job poller waits between status checks.
//
// Default: RealSleeper. Tests use a fake that records requested durations.
func WithSleeper(s Sleeper) Option {
	return func(p *Program) { p.sleeper = s }
}

// WithSeedSource sets where local jobs compiled without an explicit seed get
// one from.
func WithSeedSource(s compiler.SeedSource) Option {
	return func(p *Program) { p.seeds = s }
}

// WithRecordSink mirrors every execution record to s, e.g. a SQLite history.
func WithRecordSink(s RecordSink) Option {
	return func(p *Program) { p.sink = s }
}

// WithEngines overrides the local engines per device class.
func WithEngines(engines map[ir.DeviceClass]sim.Engine) Option {
	return func(p *Program) {
		for class, e := range engines {
			p.engines[class] = e
		}
	}
}

// WithRunIDGenerator sets how dispatch cycles are named.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(p *Program) { p.runIDs = g }
}

// WithClock sets the clock stamping records handed to the sink.
// Used to continue numbering on top of an existing history.
func WithClock(c *Clock) Option {
	return func(p *Program) { p.clock = c }
}

// New creates an empty Program.
func New(opts ...Option) *Program {
	p := &Program{
		registers: newRegisterStore(),
		catalog:   newCatalog(),
		queue:     newExecutionQueue(),
		devices: map[string]ir.DeviceClass{
			DeviceLocalQASM:    ir.DeviceLocalSampling,
			DeviceLocalUnitary: ir.DeviceLocalUnitary,
		},
		seeds: compiler.RandomSeeds{},
		engines: map[ir.DeviceClass]sim.Engine{
			ir.DeviceLocalSampling: sim.SamplingEngine{},
			ir.DeviceLocalUnitary:  sim.UnitaryEngine{},
		},
		sleeper: RealSleeper{},
		runIDs:  UUIDv7Generator{},
		clock:   NewClock(),
	}
	for _, name := range DefaultRemoteDevices {
		p.devices[name] = ir.DeviceRemote
	}

	for _, opt := range opts {
		opt(p)
	}

	p.compiler = compiler.New(compiler.WithSeedSource(p.seeds))
	return p
}

// DeviceClass reports how a device name is executed.
func (p *Program) DeviceClass(device string) ir.DeviceClass {
	if class, ok := p.devices[device]; ok {
		return class
	}
	return ir.DeviceUnknown
}

// Devices lists every known device name, sorted.
func (p *Program) Devices() []string {
	names := make([]string, 0, len(p.devices))
	for name := range p.devices {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LastDevice returns the device most recently dispatched to, or "" before
// the first Run.
func (p *Program) LastDevice() string {
	return p.lastDevice
}

// LastRunID returns the id of the most recent Run, or "" before the first.
func (p *Program) LastRunID() string {
	return p.lastRunID
}

// QueueLen returns the number of compiled jobs awaiting Run.
func (p *Program) QueueLen() int {
	return p.queue.Len()
}

// PendingJobs returns a copy of the jobs queued for device.
func (p *Program) PendingJobs(device string) []ir.CompiledJob {
	return slices.Clone(p.queue.Jobs(device))
}

// PendingDevices lists queued devices in dispatch order.
func (p *Program) PendingDevices() []string {
	return p.queue.Devices()
}
