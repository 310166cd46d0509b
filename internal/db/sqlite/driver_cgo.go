//go:build cgo_sqlite

package sqlite

// cgo build against the amalgamation bundled with mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "cgo_sqlite,sqlite_fts5" ./...
//
// The sqlite_fts5 tag is mandatory: without it the reports_fts migration fails.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver registered for SQLite.
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
