package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter(gemini.DefaultModel)
	require.NoError(t, err)

	// Verify it implements the interface
	var _ sitelens.TokenCounter = tc

	t.Run("counts tokens in prompt", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "Extract the price and rating.")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("cancelled context returns error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tc.CountTokens(ctx, "hello")

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("longer digest returns more tokens", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		shortCount, err := tc.CountTokens(ctx, "PRICE: $10")
		require.NoError(t, err)

		longCount, err := tc.CountTokens(ctx, "PRICE: $10\nRATING: 4.5 out of 5 stars\nREVIEW_COUNT: 1,234 ratings\nHEADING: Wireless headphones with noise cancelling")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})
}

func TestNewTokenCounter_UnknownModel(t *testing.T) {
	t.Parallel()

	_, err := gemini.NewTokenCounter("not-a-model")

	require.Error(t, err)
	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
}
