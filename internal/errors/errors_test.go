package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("part %s not found", "_p123")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrPrecondition))
	assert.Equal(t, "part _p123 not found", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete line: %w", Precondition("line still has parts"))

	assert.True(t, Is(err, ErrPrecondition))

	var domainErr *Error
	assert.True(t, As(err, &domainErr))
	assert.Equal(t, CodePrecondition, domainErr.Code)
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := ErrInternal.WithCause(cause)

	assert.Equal(t, "internal error: disk full", err.Error())
	assert.Equal(t, cause, Unwrap(err))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodePrecondition, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestValidationWithDetails(t *testing.T) {
	details := map[string]string{"amount": "is required"}
	err := ValidationWithDetails("validation failed", details)

	assert.Equal(t, details, err.Details)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}
