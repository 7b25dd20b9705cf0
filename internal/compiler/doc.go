// Package compiler translates circuits into device-ready CompiledJobs.
//
// Compilation always unrolls to the basis gate set. When a coupling map is
// given, the Mapper passes then run in a fixed order:
//
//  1. SwapMapper routes two-qubit gates onto coupled qubits
//  2. the routed circuit is unrolled again
//  3. DirectionMapper orients cx gates along directed edges
//  4. CXCancellation drops adjacent identical cx pairs
//  5. Optimize1Q merges single-qubit runs
//
// For local devices the compiled source is expanded into an ir.LocalForm.
package compiler
