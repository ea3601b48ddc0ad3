// Package service holds the ledger, user and category use cases.
package service

import (
	"errors" // Error classification
	"fmt"    // Message formatting
)

// Kind classifies a service failure
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindValidation:   "validation",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "forbidden",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Error is a classified service failure. Message is safe to show to clients
// except for KindInternal, whose cause stays in Err.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationErr(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func unauthorizedErr(msg string, cause error) error {
	return &Error{Kind: KindUnauthorized, Message: msg, Err: cause}
}

func forbiddenErr(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func notFoundErr(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func conflictErr(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func internalErr(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}
