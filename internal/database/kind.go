// Package database selects, initializes and adapts the storage backends that
// hold contact submissions and service inquiries.
package database

import "strings"

// Kind names a storage backend.
type Kind string

const (
	// KindSQLiteAPI talks to the local form API server over HTTP.
	KindSQLiteAPI Kind = "sqlite"
	// KindSupabase talks to the hosted Supabase Postgres database.
	KindSupabase Kind = "supabase"
	// KindPocketBase talks to a self-hosted PocketBase records API.
	KindPocketBase Kind = "pocketbase"
	// KindSQLiteFile opens a SQLite file in-process.
	KindSQLiteFile Kind = "sqlite-file"
	// KindDynamoDB talks to an AWS DynamoDB table.
	KindDynamoDB Kind = "dynamodb"
)

// DefaultKind is used when no backend is configured or the configured name
// is not recognized.
const DefaultKind = KindSupabase

// Kinds lists every recognized backend.
var Kinds = []Kind{KindSQLiteAPI, KindSupabase, KindPocketBase, KindSQLiteFile, KindDynamoDB}

// Valid reports whether k is a recognized backend.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ResolveKind maps a configured name onto a Kind. recognized is false when a
// non-empty name had to be replaced by DefaultKind.
func ResolveKind(raw string) (kind Kind, recognized bool) {
	name := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if name == "" {
		return DefaultKind, true
	}
	if !name.Valid() {
		return DefaultKind, false
	}
	return name, true
}
