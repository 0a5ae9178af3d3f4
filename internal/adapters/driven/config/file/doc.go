// Package file keeps the client configuration in ~/.sercha/config.toml.
//
// ConfigStore exposes the TOML tables as dot-notation keys and rewrites the
// whole file on every update. Watcher follows the file with fsnotify so
// edits made in an editor reach the running client without a restart.
package file
