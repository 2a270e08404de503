// Package errs defines the coded errors shared by the harness layers.
package errs

import "errors"

// Code is a harness error code.
type Code string

const (
	// Timeout means a wait exceeded its deadline.
	Timeout Code = "timeout"
	// ElementNotFound means an immediate (non-polled) lookup found nothing.
	ElementNotFound Code = "element_not_found"
	// StaleElement means a previously located element left the DOM.
	StaleElement Code = "stale_element"
	// NoAlert means no JavaScript dialog is open.
	NoAlert Code = "no_alert"
	// SessionRestoreFailed covers any failure while reusing persisted cookies.
	SessionRestoreFailed Code = "session_restore_failed"
	// FatalLoginFailure means interactive login failed too.
	FatalLoginFailure Code = "fatal_login_failure"
	InvalidConfig     Code = "invalid_config"
	Internal          Code = "internal"
)

// Error is a coded harness error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// CodeOf returns the outermost error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return Internal
}

// Is reports whether any error in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var coded *Error
		if !errors.As(err, &coded) {
			return false
		}
		if coded.Code == code {
			return true
		}
		err = coded.Err
	}
	return false
}
