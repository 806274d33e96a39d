package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodePlanNotFound, http.StatusNotFound},
		{CodeInvalidStatus, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeHasActiveSubscription, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.code), string(tc.code))
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "order not found")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeInternal, CodeOf(nil))

	// Wrapping through fmt keeps the code reachable via errors.As.
	wrapped := fmt.Errorf("handler: %w", New(CodeForbidden, "admin access required"))
	assert.Equal(t, CodeForbidden, CodeOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeInternal, "failed to load order", cause)
	assert.ErrorIs(t, err, cause)
	// The caller-facing message must not leak the cause.
	assert.Equal(t, "failed to load order", MessageOf(err))
}
