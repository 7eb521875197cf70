// Package migrations embeds the PostgreSQL schema migrations so the migrate
// tool works from a single binary.
package migrations

import "embed"

// FS holds the numbered up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
