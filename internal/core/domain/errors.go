package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure by the layer it originated in.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindConfig      ErrorKind = "config"      // credential or key absent / placeholder
	KindInput       ErrorKind = "input"       // user supplied input missing or invalid
	KindNetwork     ErrorKind = "network"     // connection, timeout, non-2xx
	KindParse       ErrorKind = "parse"       // response missing expected fields
	KindApplication ErrorKind = "application" // collaborator reported an error
	KindQuota       ErrorKind = "quota"
	KindSafety      ErrorKind = "safety"
	KindIO          ErrorKind = "io" // local filesystem
)

// Error is the single error kind raised by collaborator wrappers.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind) + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Errorf creates an Error of the given kind with a formatted message and no cause.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindNone.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindNone
}

// IsPermanent reports whether retrying err cannot help.
func IsPermanent(err error) bool {
	switch KindOf(err) {
	case KindConfig, KindInput, KindQuota, KindSafety, KindIO:
		return true
	default:
		return false
	}
}
