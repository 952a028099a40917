package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can translate it
// without inspecting message strings.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Conflict marks a transition attempted out of its source state or a
// violated uniqueness constraint.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Unexpected(format string, args ...any) error {
	return &Error{Kind: KindUnexpected, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, defaulting to KindUnexpected
// for plain errors (driver failures, context cancellations, etc).
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
