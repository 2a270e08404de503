package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "login failed: boom", Wrap(FatalLoginFailure, "login failed", cause).Error())
	assert.Equal(t, "login failed", New(FatalLoginFailure, "login failed").Error())
	assert.Equal(t, "boom", Wrap(Timeout, "", cause).Error())
	assert.Equal(t, "timeout", (&Error{Code: Timeout}).Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Internal, CodeOf(nil))
	assert.Equal(t, Internal, CodeOf(errors.New("plain")))
	assert.Equal(t, Timeout, CodeOf(New(Timeout, "x")))

	wrapped := fmt.Errorf("outer: %w", New(ElementNotFound, "missing"))
	assert.Equal(t, ElementNotFound, CodeOf(wrapped))
}

func TestIsWalksNestedCodes(t *testing.T) {
	inner := New(Timeout, "marker never appeared")
	outer := Wrap(FatalLoginFailure, "interactive login", fmt.Errorf("wait: %w", inner))

	assert.True(t, Is(outer, FatalLoginFailure))
	assert.True(t, Is(outer, Timeout))
	assert.False(t, Is(outer, ElementNotFound))
	assert.False(t, Is(nil, Timeout))
	assert.False(t, Is(errors.New("plain"), Internal))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(SessionRestoreFailed, "restore", cause)
	assert.ErrorIs(t, err, cause)

	var nilErr *Error
	assert.Nil(t, nilErr.Unwrap())
	assert.Equal(t, "", nilErr.Error())
}
