package db

import (
	"errors"
)

// Operation names carried by StoreError.
const (
	OpOpen          = "open"
	OpListTables    = "list tables"
	OpDescribeTable = "describe table"
	OpSelectRows    = "select rows"
)

// StoreError is the single category for anything that goes wrong while
// talking to the store: connecting, querying or reading its catalog.
// Error returns the driver's message unchanged.
type StoreError struct {
	Op    string // one of the Op* constants
	Table string // empty for database-level operations
	Err   error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store access error"
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Wrap tags err as a StoreError for op. A nil err stays nil and an
// existing StoreError is returned as is.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Table: table, Err: err}
}
