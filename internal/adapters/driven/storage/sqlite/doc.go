// Package sqlite is the default durable backend. It stores everything in
// one modernc.org/sqlite database (pure Go, so no cgo toolchain is needed)
// at ~/.sercha/data/client.db.
//
// The single connection serves two ports:
//
//   - KeyValueStore holds result pages under search:cache:* and the
//     recent-search list under search:history.
//   - SchedulerStore holds maintenance task schedules and their run log.
//
// Tables are created by the numbered migrations embedded from migrations/,
// applied in order when the store opens. The database runs in WAL mode so
// the CLI and a running TUI can share it.
package sqlite
