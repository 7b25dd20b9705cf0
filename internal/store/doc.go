// Package store provides SQLite-backed execution history.
//
// Every ExecutionRecord a Program produces can be mirrored here through the
// engine's RecordSink interface, giving a durable, append-only history of
// what ran where and what came back.
//
// # Critical Patterns
//
// CP-1: Logical Time
//   - Rows are keyed by seq INTEGER from the Program's logical clock
//   - All reads ORDER BY seq ASC, never by wall time
//
// CP-2: Idempotent Writes
//   - Re-writing an existing seq is a no-op (ON CONFLICT DO NOTHING)
//
// CP-3: Content-Addressed Records
//   - record_id is ir.RecordID(run_id, record): what ran, not what came back
//   - Two rows with equal record_id are the same job submitted twice
//
// # Database Configuration
//
// Set through go-sqlite3 DSN parameters on every connection:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - user_version: schema version; newer histories are refused
package store
