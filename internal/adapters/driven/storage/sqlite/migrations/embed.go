// Package migrations holds the numbered schema files of the client
// database. Store.migrate applies every *.up.sql newer than the recorded
// schema version, each in its own transaction.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
