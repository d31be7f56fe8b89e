package store

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is wrapped by every operation of a placeholder backend.
var ErrNotImplemented = errors.New("backend not implemented")

// ErrUnknownTable is returned when an operation names a table that has no
// schema definition.
var ErrUnknownTable = errors.New("unknown table")

// ConfigurationError reports an unresolvable backend kind or missing
// connection parameters. It is raised before any I/O.
type ConfigurationError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Kind == "" {
		return "store configuration: " + e.Reason
	}
	return fmt.Sprintf("store configuration (%s): %s", e.Kind, e.Reason)
}

// ConnectionError reports a failure to establish or keep a connection.
type ConnectionError struct {
	Kind Kind
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection refused by %s backend: %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a driver failure while running a statement.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsConfiguration reports whether err is a *ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsConnection reports whether err is a *ConnectionError.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
