package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.status, ToHTTPStatus(New(tc.code, "x")))
		})
	}

	t.Run("upstream proxies the peer status", func(t *testing.T) {
		assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(Upstream(422, "course full")))
	})

	t.Run("non-domain errors are internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(fmt.Errorf("boom")))
	})
}

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "duplicate enrollment")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))

	wrapped := fmt.Errorf("create: %w", err)
	assert.True(t, HasCode(wrapped, CodeConflict))

	assert.False(t, HasCode(fmt.Errorf("plain"), CodeConflict))
}

func TestWrapKeepsCauseOutOfClientMessage(t *testing.T) {
	cause := fmt.Errorf("dial tcp 10.0.0.1:443: i/o timeout")
	err := Wrap(CodeServiceUnavailable, "student service is unreachable", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "student service is unreachable", err.Message)
}
