// Package harness runs qprog scenarios: scripted compile and run steps over
// a program spec, checked by assertions and golden trace snapshots.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: bell_remote
//	description: "Bell pair on a scripted remote backend"
//	spec: specs/bell.yaml          # relative to the scenario file
//	run_id: bell                   # run ids become bell-1, bell-2, ...
//	backend:
//	  states: [RUNNING, COMPLETED]
//	steps:
//	  - compile: { device: ibmqx2, shots: 64 }
//	  - run: { wait: 1, timeout: 5 }
//	assertions:
//	  - type: counts
//	    circuit: bell
//	    device: ibmqx2
//	    expect: { "0": 64 }
//
// A step may set expect_error to the engine error code it must fail with.
//
// # Assertion Types
//
//   - counts: the counts table of a circuit on a device equals expect
//   - counts_total: the counts of a circuit on a device sum to count
//   - status: the recorded status of a circuit on a device
//   - record_count: the number of records written to the history
//   - sleep_count: the number of poller sleeps
//   - average: AverageData of a circuit under an observable
//
// # Deterministic Execution
//
// Every scenario runs against:
//   - A fresh in-memory SQLite history
//   - Fixed run ids and a fixed local seed source
//   - A scripted remote backend and a sleeper that never sleeps
//
// The history rows form the scenario trace, compared against golden files
// with RunWithGolden.
package harness
