package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeParseError, "bad magic number")
	assert.Equal(t, "[PARSE_ERROR] bad magic number", err.Error())

	wrapped := Wrap(CodeWriteError, "emit failed", fmt.Errorf("pipe closed"))
	assert.Equal(t, "[WRITE_ERROR] emit failed: pipe closed", wrapped.Error())
}

func TestAppError_Is(t *testing.T) {
	err := Newf(CodeUnsupported, "retaining paths are not yet implemented")
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.False(t, errors.Is(err, ErrParseError))

	assert.True(t, IsUnsupported(err))
	assert.False(t, IsParseError(err))
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := Wrap(CodeWriteError, "emit failed", inner)
	assert.Equal(t, inner, errors.Unwrap(err))
	assert.True(t, IsWriteError(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeLookupError, GetErrorCode(New(CodeLookupError, "no such item")))
	assert.Equal(t, CodeUnknown, GetErrorCode(fmt.Errorf("plain")))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "no such item", GetErrorMessage(New(CodeLookupError, "no such item")))
	assert.Equal(t, "plain", GetErrorMessage(fmt.Errorf("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))
}
