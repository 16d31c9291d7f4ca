package readability_test

import (
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements sitelens.Extractor at compile time.
var _ sitelens.Extractor = (*readability.Extractor)(nil)

var recipe = `<!DOCTYPE html>
<html>
<head><title>Lemon Ricotta Pancakes</title></head>
<body>
<header><nav><a href="/">Home</a> <a href="/desserts">Desserts</a></nav></header>
<aside class="sidebar"><h3>Popular</h3><a href="/cookies">Chewy cookies</a></aside>
<main>
<article>
<h1>Lemon Ricotta Pancakes</h1>
<p>These pancakes are light and fluffy thanks to whipped egg whites folded into a ricotta batter with plenty of fresh lemon zest.</p>
<h2>Ingredients</h2>
<ul><li>1 cup ricotta</li><li>2 eggs, separated</li><li>1 lemon, zested</li></ul>
<h2>Method</h2>
<p>Whisk the yolks with the ricotta and zest, then fold in the beaten whites. Cook on a buttered griddle over medium heat until golden on both sides.</p>
<p>Serve warm with maple syrup and a handful of fresh blueberries for a bright weekend breakfast.</p>
</article>
</main>
<footer><p>Copyright 2025 Kitchen Notes</p></footer>
</body>
</html>`

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := readability.NewExtractor().Extract("")

	require.Error(t, err)
	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	result, err := readability.NewExtractor().Extract(recipe)

	require.NoError(t, err)
	assert.Equal(t, "Lemon Ricotta Pancakes", result.Title)
}

func TestExtractor_KeepsArticleContent(t *testing.T) {
	t.Parallel()

	result, err := readability.NewExtractor().Extract(recipe)

	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "whipped egg whites")
	assert.Contains(t, result.ContentHTML, "<li>")
	assert.Contains(t, result.Text, "maple syrup")
}

func TestExtractor_RemovesBoilerplate(t *testing.T) {
	t.Parallel()

	result, err := readability.NewExtractor().Extract(recipe)

	require.NoError(t, err)
	assert.NotContains(t, result.Text, "Chewy cookies")
	assert.NotContains(t, result.Text, "Copyright 2025")
}

func TestExtractor_ProvidesExcerpt(t *testing.T) {
	t.Parallel()

	result, err := readability.NewExtractor().Extract(recipe)

	require.NoError(t, err)
	assert.NotEmpty(t, result.Description)
}
