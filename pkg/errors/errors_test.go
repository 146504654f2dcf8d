package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeOracleUnavailable, "statute retrieval timed out")
	assert.Equal(t, "[ORACLE_001] statute retrieval timed out", err.Error())

	withDetail := err.WithDetail("code 484 PC")
	assert.Equal(t, "[ORACLE_001] statute retrieval timed out: code 484 PC", withDetail.Error())
	// WithDetail clones; the original is untouched.
	assert.Empty(t, err.Detail)
}

func TestWrap_PreservesChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := Wrap(cause, ErrCodeCacheError, "failed to read verification cache")

	require.NotNil(t, wrapped)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsCode(wrapped, ErrCodeCacheError))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestWrap_UnknownCodeInheritsInner(t *testing.T) {
	inner := New(ErrCodeReferenceNotFound, "code not in table")
	outer := Wrap(fmt.Errorf("lookup: %w", inner), CodeUnknown, "lookup failed")

	assert.Equal(t, ErrCodeReferenceNotFound, outer.Code)
}

func TestIsCode_TraversesWrappedChain(t *testing.T) {
	inner := New(ErrCodeOracleMalformed, "not valid JSON")
	outer := fmt.Errorf("retrieval: %w", inner)

	assert.True(t, IsCode(outer, ErrCodeOracleMalformed))
	assert.False(t, IsCode(outer, ErrCodeOracleRateLimited))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeTimeout, GetCode(Timeout("oracle deadline exceeded")))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeReferenceNotFound))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatusForCode(ErrCodeOracleRateLimited))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE")))
}

func TestIsClientServerSplit(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.False(t, IsServerError(ErrCodeBadRequest))
	assert.True(t, IsServerError(ErrCodeOracleUnavailable))
}
