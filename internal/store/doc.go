// Package store is the persistence collaborator for the social graph engine.
//
// State lives in named maps of string keys to opaque byte values. The engine
// only sees the Map interface; three backends implement it:
//   - Memory: process-local, used by tests and the conformance harness
//   - Store: SQLite via sqlx, one entries table partitioned by namespace
//   - Redis: one hash per map, atomic insert/remove via Lua scripts
//
// Collection wraps a Map with JSON encoding of a single value type.
//
// The package also provides two event sinks: EventLog appends every domain
// event to the SQLite events table under its own logical sequence, and
// Publisher broadcasts events on a Redis channel.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Event IDs are computed by ir.EventID from RFC 8785 canonical JSON.
package store
