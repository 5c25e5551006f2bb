package db

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned for reads of missing keys.
var ErrKeyNotFound = errors.New("db: key not found")

// Command names recorded in Error.Op.
const (
	OpScan    = "SCAN"
	OpDel     = "UNLINK"
	OpGet     = "GET"
	OpSet     = "SET"
	OpIncrBy  = "INCRBY"
	OpExpire  = "EXPIRE"
	OpJSONSet = "JSON.SET"
	OpJSONGet = "JSON.GET"
)

// Error is a failed store command.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// WithKey returns an Error naming the key the command failed on.
func WithKey(op, key string, err error) error {
	return &Error{Op: op, Err: fmt.Errorf("key %s: %w", key, err)}
}
