// Package history provides durable storage for completed test results.
//
// A history is an ordered, append-only sequence of opaque JSON entries kept
// under a single key (default "trafficHistory"). Entries are never validated,
// deduplicated, bounded or pruned; callers record whatever shape they like.
//
// # Backends
//
//   - sqlite: one row per entry in history_entries, ordered by seq.
//   - file:   a JSON document mapping each key to its array of entries.
//   - redis:  one list per key, appended with RPUSH.
//   - memory: process-local, for tests.
//
// # Append atomicity
//
// Append never loses a concurrent writer's entry. The sqlite and redis
// backends append with a single INSERT or RPUSH. The file backend rewrites
// the whole document, so it serializes writers in-process and replaces the
// file with an atomic rename.
//
// # Corrupt data
//
// Stored data that does not parse as JSON fails loudly with ErrCorrupt. It is
// never silently treated as an empty history.
package history
