package session

import "errors"

var (
	// ErrStaleResult is returned when a task finished after its node was
	// deleted, rewired or handed a new task
	ErrStaleResult = errors.New("result discarded: node changed while computing")

	// ErrBusy is returned when every worker slot is taken
	ErrBusy = errors.New("too many tasks in flight")

	// ErrClosed is returned once the session has been closed
	ErrClosed = errors.New("session closed")

	// ErrWrongKind is returned when an action does not fit the node kind
	ErrWrongKind = errors.New("action not supported by this node kind")
)
