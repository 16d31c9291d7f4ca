package sitelens_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := sitelens.Errorf(sitelens.ENOTFOUND, "task %d not found", 7)

	assert.Equal(t, sitelens.ENOTFOUND, sitelens.ErrorCode(err))
	assert.Equal(t, "task 7 not found", sitelens.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sitelens.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sitelens.ErrorMessage(nil))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading: %w", sitelens.Errorf(sitelens.EINVALID, "no URLs provided"))

	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
	assert.Equal(t, "no URLs provided", sitelens.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, sitelens.EINTERNAL, sitelens.ErrorCode(err))
	assert.Equal(t, "boom", sitelens.ErrorMessage(err))
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	t.Run("carries both reasons", func(t *testing.T) {
		t.Parallel()

		primary := errors.New("navigation timeout")
		fallback := errors.New("HTTP 403")
		err := &sitelens.FetchError{URL: "https://example.com", Primary: primary, Fallback: fallback}

		assert.Equal(t, sitelens.EFETCH, sitelens.ErrorCode(err))
		assert.Contains(t, err.Error(), "navigation timeout")
		assert.Contains(t, err.Error(), "Also tried simple HTTP request but failed: HTTP 403")
		assert.ErrorIs(t, err, primary)
		assert.ErrorIs(t, err, fallback)
	})

	t.Run("single strategy", func(t *testing.T) {
		t.Parallel()

		err := &sitelens.FetchError{URL: "https://example.com", Fallback: errors.New("HTTP 500")}

		assert.Equal(t, "Failed to fetch page: HTTP 500", err.Error())
	})

	t.Run("outranks wrapped application errors", func(t *testing.T) {
		t.Parallel()

		err := &sitelens.FetchError{
			URL:     "https://example.com",
			Primary: sitelens.Errorf(sitelens.EFETCH, "Page took too long to load"),
		}

		assert.Equal(t, sitelens.EFETCH, sitelens.ErrorCode(err))
		assert.Equal(t, "Failed to fetch page: Page took too long to load", sitelens.ErrorMessage(err))
	})
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"timeout code", sitelens.Errorf(sitelens.ETIMEOUT, "slow"), true},
		{"gateway timeout", errors.New("Error 504, Message: Deadline expired"), true},
		{"timeout text", errors.New("request Timeout while reading body"), true},
		{"bad request", errors.New("Error 400, Message: invalid argument"), false},
		{"validation", sitelens.Errorf(sitelens.EINVALID, "bad input"), false},
		{"page timeout", sitelens.Errorf(sitelens.EFETCH, "Page took too long to load (timeout: 60s)."), false},
		{"fetch failure", &sitelens.FetchError{URL: "https://a.com", Primary: context.DeadlineExceeded}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sitelens.IsTransient(tt.err))
		})
	}
}
