package db

import "errors"

// ErrKeyNotFound is returned by KVStore.Get for a missing key.
var ErrKeyNotFound = errors.New("db: key not found")

// Op names used for error context.
const (
	OpOpen    = "OPEN"
	OpMigrate = "MIGRATE"
	OpPing    = "PING"
	OpBegin   = "BEGIN"
	OpQuery   = "QUERY"
	OpScan    = "SCAN"
	OpCommit  = "COMMIT"
	OpGet     = "GET"
	OpSet     = "SET"
	OpIncr    = "INCR"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
