package aredis

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors, checkable with errors.Is. The connect and submission
// failure helpers below wrap an underlying cause (a dial or write error)
// with github.com/pkg/errors, adding context and a stack while leaving that
// cause reachable via errors.Cause; a submission failure reaches the caller
// only as the text of an Error reply.
var (
	// ErrClientClosed is returned by any operation attempted after Close,
	// and used to fail pending completions during Close itself.
	ErrClientClosed = errors.New("aredis: client closed")

	// ErrConnectionLost is delivered to every still-pending completion
	// when the disconnect sentinel arrives from the poll goroutine.
	ErrConnectionLost = errors.New("aredis: connection lost")

	// ErrNullReply marks a callback invoked with a null native reply.
	ErrNullReply = errors.New("aredis: null reply")

	// ErrAllocationFailed marks an internal allocation that could not be
	// recovered from (callback info, command node, cross-thread payload).
	ErrAllocationFailed = errors.New("aredis: allocation failed")

	// ErrEmptyArgv rejects a command with zero arguments.
	ErrEmptyArgv = errors.New("aredis: command requires at least one argument")

	// ErrEmptySubscription rejects Subscribe calls with no channels and no
	// patterns.
	ErrEmptySubscription = errors.New("aredis: subscribe requires at least one channel or pattern")
)

// ReplyError wraps the Redis error-kind reply variant.
type ReplyError struct {
	Message string
}

func (e ReplyError) Error() string { return "aredis: " + e.Message }

// connectionFailedError wraps the error returned by the engine's Connect
// (the underlying dial), keeping its message verbatim after the prefix.
func connectionFailedError(addr string, cause error) error {
	return pkgerrors.Wrapf(cause, "aredis: connect to %s failed", addr)
}

// submissionFailedError wraps a failure to hand argv to the protocol
// engine's output buffer.
func submissionFailedError(cause error) error {
	return pkgerrors.Wrap(cause, "aredis: submission failed")
}
