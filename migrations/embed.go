// Package migrations holds the Postgres schema for the Supabase backend.
package migrations

import "embed"

// FS contains the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
