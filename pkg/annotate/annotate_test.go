package annotate_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schierlm/mnemonifier/pkg/annotate"
)

func TestNone_NeverHints(t *testing.T) {
	t.Parallel()

	_, ok := annotate.None.Annotate('\u20AC')
	assert.False(t, ok)
}

func TestValidHint(t *testing.T) {
	t.Parallel()

	assert.True(t, annotate.ValidHint("EU"))
	assert.True(t, annotate.ValidHint("Bei "))
	assert.False(t, annotate.ValidHint(""))
	assert.False(t, annotate.ValidHint("[?]"))
	assert.False(t, annotate.ValidHint("a}b"))
	assert.False(t, annotate.ValidHint("a{b"))
	assert.False(t, annotate.ValidHint("a]"))
	assert.False(t, annotate.ValidHint("tab\t"))
	assert.False(t, annotate.ValidHint("\u00FC"))
}

func TestSanitize_DropsUnsafeHints(t *testing.T) {
	t.Parallel()

	raw := annotate.Func(func(r rune) (string, bool) {
		switch r {
		case 1:
			return "ok", true
		case 2:
			return "x}]", true
		default:
			return "", true
		}
	})

	safe := annotate.Sanitize(raw)

	hint, ok := safe.Annotate(1)
	require.True(t, ok)
	assert.Equal(t, "ok", hint)

	_, ok = safe.Annotate(2)
	assert.False(t, ok)

	_, ok = safe.Annotate(3)
	assert.False(t, ok)
}

func TestSanitize_NilAndIdempotent(t *testing.T) {
	t.Parallel()

	_, ok := annotate.Sanitize(nil).Annotate('x')
	assert.False(t, ok)

	once := annotate.Sanitize(annotate.Unidecode)
	assert.Equal(t, once, annotate.Sanitize(once))
}

func TestUnidecode_Hints(t *testing.T) {
	t.Parallel()

	hint, ok := annotate.Unidecode.Annotate('\u20AC')
	require.True(t, ok)
	assert.Equal(t, "EU", hint)

	hint, ok = annotate.Unidecode.Annotate('\u0400')
	require.True(t, ok)
	assert.Equal(t, "Ie", hint)
}

func TestUnidecode_NoHint(t *testing.T) {
	t.Parallel()

	cases := map[string]rune{
		"unknown in table": '\u20B9',
		"supplementary":    '\U0001D11E',
		"surrogate":        0xD800,
		"beyond max":       0x110000,
	}

	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, ok := annotate.Unidecode.Annotate(r)
			assert.False(t, ok)
		})
	}
}

func TestCached_MemoizesAnswers(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	inner := annotate.Func(func(r rune) (string, bool) {
		calls.Add(1)

		if r == 'a' {
			return "A", true
		}

		return "", false
	})

	cached := annotate.Cached(inner, 8)

	for range 3 {
		hint, ok := cached.Annotate('a')
		require.True(t, ok)
		assert.Equal(t, "A", hint)

		_, ok = cached.Annotate('b')
		assert.False(t, ok)
	}

	assert.Equal(t, int32(2), calls.Load())

	stats := cached.(*annotate.CachedAnnotator).Stats()
	assert.Equal(t, int64(4), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestCached_DisabledReturnsInner(t *testing.T) {
	t.Parallel()

	_, isCached := annotate.Cached(annotate.Unidecode, 0).(*annotate.CachedAnnotator)
	assert.False(t, isCached)

	_, ok := annotate.Cached(nil, 8).Annotate('a')
	assert.False(t, ok)
}
