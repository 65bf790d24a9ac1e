// Package store provides the SQLite journal of executed commands.
//
// Every mutating command the engine runs is appended together with its
// outcome. The journal is the source for session resume, replay checks and
// traces; the timeline itself is never persisted, it is rebuilt by replaying
// commands in order.
//
// # Ordering
//
// All reads order by seq ASC, id ASC COLLATE BINARY. seq comes from the
// engine's logical clock, so a journal reads back identically on every
// machine.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: an outcome must reference a journaled command
//
// Args and results are stored as RFC 8785 canonical JSON (see ir.MarshalCanonical).
package store
