package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/mock"
	"github.com/fwojciec/sitelens/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFetcher(html string, err error, calls *[]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if calls != nil {
				*calls = append(*calls, url)
			}
			return html, err
		},
		CloseFn: func() error { return nil },
	}
}

func TestFallbackFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("uses the primary and normalizes the URL", func(t *testing.T) {
		t.Parallel()

		var primaryCalls, fallbackCalls []string
		f := pipeline.NewFallbackFetcher(
			staticFetcher("<html>primary</html>", nil, &primaryCalls),
			staticFetcher("<html>fallback</html>", nil, &fallbackCalls),
		)

		html, err := f.Fetch(context.Background(), " example.com/page ")

		require.NoError(t, err)
		assert.Equal(t, "<html>primary</html>", html)
		assert.Equal(t, []string{"https://example.com/page"}, primaryCalls)
		assert.Empty(t, fallbackCalls)
	})

	t.Run("falls back when the primary fails", func(t *testing.T) {
		t.Parallel()

		f := pipeline.NewFallbackFetcher(
			staticFetcher("", errors.New("chrome crashed"), nil),
			staticFetcher("<html>fallback</html>", nil, nil),
		)

		html, err := f.Fetch(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, "<html>fallback</html>", html)
	})

	t.Run("reports both failures", func(t *testing.T) {
		t.Parallel()

		f := pipeline.NewFallbackFetcher(
			staticFetcher("", sitelens.Errorf(sitelens.EFETCH, "Page took too long to load"), nil),
			staticFetcher("", sitelens.Errorf(sitelens.EFETCH, "Page content is too short or empty."), nil),
		)

		_, err := f.Fetch(context.Background(), "https://example.com")

		var fe *sitelens.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "https://example.com", fe.URL)
		assert.Equal(t, sitelens.EFETCH, sitelens.ErrorCode(err))
		assert.Contains(t, err.Error(), "Page took too long to load")
		assert.Contains(t, err.Error(), "Also tried simple HTTP request but failed: Page content is too short or empty.")
	})

	t.Run("works without a primary", func(t *testing.T) {
		t.Parallel()

		f := pipeline.NewFallbackFetcher(nil, staticFetcher("", errors.New("connection refused"), nil))

		_, err := f.Fetch(context.Background(), "https://example.com")

		var fe *sitelens.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Nil(t, fe.Primary)
		assert.EqualError(t, err, "Failed to fetch page: connection refused")
	})

	t.Run("rejects a blank URL", func(t *testing.T) {
		t.Parallel()

		f := pipeline.NewFallbackFetcher(staticFetcher("x", nil, nil), nil)

		_, err := f.Fetch(context.Background(), "  ")

		assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
	})
}

func TestFallbackFetcher_Close(t *testing.T) {
	t.Parallel()

	closed := 0
	closer := func(err error) *mock.Fetcher {
		return &mock.Fetcher{CloseFn: func() error {
			closed++
			return err
		}}
	}
	f := pipeline.NewFallbackFetcher(closer(errors.New("boom")), closer(nil))

	err := f.Close()

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 2, closed)
}
