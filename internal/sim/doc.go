// Package sim implements the in-process execution engines: a sampling
// (qasm) simulator and a unitary simulator, both built on a dense
// statevector kernel.
//
// Engines consume the ir.LocalForm attached to local CompiledJobs. Failures
// are isolated per job: a job that cannot be simulated yields status FAIL
// and a nil result without affecting the rest of the batch.
package sim
