// Package ir provides the shared data model for qprog.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Registers are immutable once created (size >= 1)
//   - A CompiledJob carries an explicit device class; Local is non-nil iff
//     the class is a local simulator
//   - ExecutionRecords are keyed by (circuit, device); last run wins
//   - All JSON tags use snake_case
package ir
