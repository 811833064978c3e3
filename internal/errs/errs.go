// Package errs defines the single error type surfaced to gitlet users.
//
// Every failure carries a Kind for internal branching and a one-line
// Message that the CLI prints verbatim.
package errs

import (
	"errors"
	"fmt"
)

// Kind is an internal error category. It is never shown to the user.
type Kind string

const (
	KindInternal           Kind = "INTERNAL"
	KindNotInitialized     Kind = "NOT_INITIALIZED"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindNotFound           Kind = "NOT_FOUND"
	KindNothingToCommit    Kind = "NOTHING_TO_COMMIT"
	KindMissingMessage     Kind = "MISSING_MESSAGE"
	KindNothingToRemove    Kind = "NOTHING_TO_REMOVE"
	KindUntrackedConflict  Kind = "UNTRACKED_CONFLICT"
	KindAlreadyOnBranch    Kind = "ALREADY_ON_BRANCH"
	KindCannotRemoveActive Kind = "CANNOT_REMOVE_ACTIVE"
	KindIncorrectOperands  Kind = "INCORRECT_OPERANDS"
	KindAmbiguousID        Kind = "AMBIGUOUS_OR_UNKNOWN_ID"
	KindNotImplemented     Kind = "NOT_IMPLEMENTED"
)

// Error is a categorized gitlet failure.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error of the same kind, so sentinels like ErrNotFound
// work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and user message to an underlying error.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Wrapped: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing line for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotInitialized     = New(KindNotInitialized, "Not in an initialized Gitlet directory.")
	ErrAlreadyExists      = New(KindAlreadyExists, "already exists")
	ErrNotFound           = New(KindNotFound, "not found")
	ErrNothingToCommit    = New(KindNothingToCommit, "No changes added to the commit.")
	ErrMissingMessage     = New(KindMissingMessage, "Please enter a commit message.")
	ErrNothingToRemove    = New(KindNothingToRemove, "No reason to remove the file.")
	ErrUntrackedConflict  = New(KindUntrackedConflict, "There is an untracked file in the way; delete it, or add and commit it first.")
	ErrAlreadyOnBranch    = New(KindAlreadyOnBranch, "No need to checkout the current branch.")
	ErrCannotRemoveActive = New(KindCannotRemoveActive, "Cannot remove the current branch.")
	ErrIncorrectOperands  = New(KindIncorrectOperands, "Incorrect operands.")
	ErrAmbiguousID        = New(KindAmbiguousID, "No commit with that id exists.")
	ErrNotImplemented     = New(KindNotImplemented, "merge is not implemented")
)
