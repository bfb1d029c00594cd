// Package store provides the SQLite ledger used by batch conversions.
//
// Every batch run is recorded with its UUIDv7 id, and every input converted
// in that run gets one row keyed by (run_id, seq). Rows carry the document
// digest from ir.DocumentDigest, so a later run can reuse the output of an
// identical dump instead of compiling it again.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Conversions must belong to a recorded run
//
// Reads are ordered by seq so a run reads back in the order it was converted.
package store
