package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements sitelens.Extractor at compile time.
var _ sitelens.Extractor = (*trafilatura.Extractor)(nil)

var article = `<!DOCTYPE html>
<html>
<head>
<title>City council approves new bike lanes - Daily News</title>
<meta name="description" content="The council voted 7-2 to fund protected lanes downtown.">
</head>
<body>
<nav><a href="/">Home</a><a href="/politics">Politics</a><a href="/sports">Sports</a></nav>
<article>
<h1>City council approves new bike lanes</h1>
<p>The city council voted seven to two on Tuesday to fund a network of protected bike lanes across the downtown core, ending months of debate.</p>
<p>Construction is expected to begin in the spring and will take roughly eighteen months, according to the transportation department.</p>
<table><tr><th>Street</th><th>Length</th></tr><tr><td>Main St</td><td>2.1 km</td></tr></table>
<p>Local business owners were divided, with some worried about parking and others expecting more foot traffic along the new routes.</p>
</article>
<footer>Copyright 2025 Daily News. All rights reserved.</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and description", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.Description, "voted 7-2")
	})

	t.Run("extracts main content as HTML and text", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "protected bike lanes")
		assert.Contains(t, result.Text, "Construction is expected to begin")
		assert.NotContains(t, result.Text, "<p>")
	})

	t.Run("removes navigation and footer boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.NotContains(t, result.Text, "All rights reserved")
		assert.False(t, strings.Contains(result.ContentHTML, `href="/sports"`))
	})

	t.Run("keeps tables by default", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(article)

		require.NoError(t, err)
		assert.Contains(t, result.Text, "Main St")
	})

	t.Run("drops tables when asked", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor(trafilatura.WithoutTables()).Extract(article)

		require.NoError(t, err)
		assert.NotContains(t, result.Text, "Main St")
		assert.Contains(t, result.Text, "protected bike lanes")
	})

	t.Run("accepts the comments option", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor(trafilatura.WithoutComments()).Extract(article)

		require.NoError(t, err)
		assert.Contains(t, result.Text, "foot traffic")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract(" ")

		require.Error(t, err)
		assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
	})
}
