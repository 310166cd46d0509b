//go:build !cgo_sqlite

package sqlite

// Pure Go build, no C toolchain required:
//
//	CGO_ENABLED=0 go build ./...
//
// modernc.org/sqlite ships with FTS5 (including the trigram tokenizer) compiled in.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver registered for SQLite.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
