package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := FileSystem(CodeNotFound, "no such file: /a.txt", fs.ErrNotExist)
	assert.Equal(t, "NOT_FOUND: no such file: /a.txt (caused by: file does not exist)", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	plain := Validation(CodeEmptyMessage, "commit message is empty")
	assert.Equal(t, "EMPTY_MESSAGE: commit message is empty", plain.Error())
}

func TestIsWalksWrappedChain(t *testing.T) {
	inner := FileSystem(CodeNotFound, "missing", nil)
	outer := Wrap(inner, KindVCS, CodeVCSFailure, "read blob")
	wrapped := fmt.Errorf("diff: %w", outer)

	assert.True(t, Is(wrapped, CodeVCSFailure))
	assert.True(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(wrapped, CodeAlreadyExists))
	assert.False(t, Is(errors.New("plain"), CodeNotFound))
	assert.False(t, Is(nil, CodeNotFound))
}

func TestKindAndCodeOf(t *testing.T) {
	err := fmt.Errorf("search: %w", Validation(CodeInvalidPattern, "bad regex"))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, CodeInvalidPattern, CodeOf(err))
	assert.True(t, IsValidation(err))

	assert.Equal(t, Kind(""), KindOf(errors.New("x")))
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.False(t, IsValidation(VCS(errors.New("boom"), "commit")))
}

func TestWithDetail(t *testing.T) {
	err := New(KindFileSystem, CodeAlreadyExists, "exists").WithDetail("path", "/x")
	assert.Equal(t, "/x", err.Details["path"])
}
