// Package engine implements the quantum program orchestrator.
//
// A Program owns named registers and circuits, compiles circuits into
// per-device jobs, and dispatches queued jobs to remote backends or local
// simulators. Results are kept per circuit and device and can be queried
// after a run.
//
// ARCHITECTURE:
//
// Compile then Run:
// Compile appends jobs to an execution queue keyed by device. Run drains
// the queue device by device, in the order devices were first queued:
//  1. Remote devices: all jobs go out as one batch, then the poller waits
//     for the job to leave RUNNING.
//  2. Local devices: jobs go to the sampling or unitary engine.
//  3. One ExecutionRecord per job is stored, replacing any earlier record
//     of the same circuit on the same device.
//
// The queue is empty after every Run, successful or not.
//
// CRITICAL PATTERNS:
//
// CP-1: Atomic Compile
// A Compile call either queues every requested job or none of them.
//
// CP-2: Logical Clock
// Records handed to the RecordSink are stamped from Clock.Next(), never
// from the wall clock.
//
// CP-3: Single Caller
// A Program is not safe for concurrent use. Independent Programs share no
// state.
package engine
