package sitelens_test

import (
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomains(t *testing.T) {
	t.Parallel()

	domains := sitelens.Domains()

	require.Len(t, domains, 19)
	seen := make(map[string]bool)
	for _, d := range domains {
		assert.False(t, seen[d.Key], "duplicate key %s", d.Key)
		seen[d.Key] = true
		assert.NotEmpty(t, d.Name, d.Key)
		assert.NotEmpty(t, d.Parameters, d.Key)
		assert.GreaterOrEqual(t, len(d.AnalysisFocus), 3, d.Key)
		assert.NotEmpty(t, d.QnAStyle, d.Key)
	}
	assert.True(t, seen[sitelens.DefaultDomain])
}

func TestLookupDomain(t *testing.T) {
	t.Parallel()

	t.Run("known", func(t *testing.T) {
		t.Parallel()
		d := sitelens.LookupDomain("ecommerce")
		assert.Equal(t, "E-Commerce", d.Name)
		assert.True(t, d.PreferStructured)
		assert.Contains(t, d.Checklist, "price")
	})

	t.Run("unknown falls back to general", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "general", sitelens.LookupDomain("nope").Key)
	})
}

func TestValidateDomain(t *testing.T) {
	t.Parallel()

	key, err := sitelens.ValidateDomain("")
	require.NoError(t, err)
	assert.Equal(t, "general", key)

	key, err = sitelens.ValidateDomain(" News ")
	require.NoError(t, err)
	assert.Equal(t, "news", key)

	_, err = sitelens.ValidateDomain("astrology")
	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(err))
}

func TestDomain_Focus(t *testing.T) {
	t.Parallel()

	d := sitelens.Domain{AnalysisFocus: []string{"only"}}

	assert.Equal(t, []string{"only", "only", "only"}, d.Focus(3))
	assert.Equal(t, []string{"pricing signals", "feature differentiation", "customer sentiment"},
		sitelens.LookupDomain("ecommerce").Focus(3))
}
