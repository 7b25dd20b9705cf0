// Package qasm reads and writes the OpenQASM 2.0 subset used for circuit
// bodies: register declarations, gate applications with parameter
// expressions, measure, reset, barrier and if(creg==n) conditions.
//
// Gate definitions (gate/opaque blocks) are not supported; circuits are
// expressed directly over the standard gate names understood by the
// compiler's unroller.
package qasm
