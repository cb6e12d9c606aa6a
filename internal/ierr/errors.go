// Package ierr defines the error taxonomy shared by connection, pool, and
// mailbox: a small set of kinds, each carrying an optional wrapped cause and
// the server's raw response text when one is available.
package ierr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindConnection     Kind = "connection"
	KindAuthentication Kind = "authentication"
	KindMailbox        Kind = "mailbox"
	KindOperation      Kind = "operation"
)

// Error is the single error type raised across this module. Kind selects
// the retry policy a caller should apply; ServerText carries the IMAP
// server's response line when the failure originated from a NO/BAD reply.
type Error struct {
	Kind       Kind
	Message    string
	ServerText string
	Cause      error
}

func (e *Error) Error() string {
	if e.ServerText != "" {
		return fmt.Sprintf("%s: %s (server: %s)", e.Kind, e.Message, e.ServerText)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func Configuration(msg string) *Error {
	return newErr(KindConfiguration, msg, nil)
}

func Connection(msg string, cause error) *Error {
	return newErr(KindConnection, msg, cause)
}

func Authentication(msg string, cause error) *Error {
	return newErr(KindAuthentication, msg, cause)
}

func Mailbox(msg string, serverText string) *Error {
	e := newErr(KindMailbox, msg, nil)
	e.ServerText = serverText
	return e
}

func Operation(msg string, serverText string, cause error) *Error {
	e := newErr(KindOperation, msg, cause)
	e.ServerText = serverText
	return e
}

// Wrap attaches pkg/errors stack context while preserving the Kind, matching
// the teacher's convention of wrapping at the point an error crosses a
// package boundary.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// IsRetryable reports whether the policy in spec §7 allows a caller/monitor
// to retry this error: Connection errors are retryable, everything else
// (configuration/auth/mailbox/operation precondition failures) is not.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindConnection
	}
	return false
}

// KindOf extracts the Kind of a wrapped ierr.Error, or "" if err isn't one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
