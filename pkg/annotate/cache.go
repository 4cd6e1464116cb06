package annotate

import (
	"github.com/schierlm/mnemonifier/pkg/lru"
)

type cachedHint struct {
	hint string
	ok   bool
}

// CachedAnnotator memoizes another annotator's answers, including absent
// hints, in a bounded LRU cache.
type CachedAnnotator struct {
	inner Annotator
	cache *lru.Cache[rune, cachedHint]
}

// Cached wraps a with an LRU cache holding at most maxEntries codepoints.
// A non-positive maxEntries disables caching and returns a unchanged.
func Cached(a Annotator, maxEntries int) Annotator {
	if a == nil {
		return None
	}

	if maxEntries <= 0 {
		return a
	}

	return &CachedAnnotator{
		inner: a,
		cache: lru.New(lru.WithMaxEntries[rune, cachedHint](maxEntries)),
	}
}

// Annotate returns the cached answer for r, asking the wrapped annotator
// on a miss.
func (c *CachedAnnotator) Annotate(r rune) (string, bool) {
	if hit, ok := c.cache.Get(r); ok {
		return hit.hint, hit.ok
	}

	hint, ok := c.inner.Annotate(r)
	c.cache.Put(r, cachedHint{hint: hint, ok: ok})

	return hint, ok
}

// Stats reports cache effectiveness.
func (c *CachedAnnotator) Stats() lru.Stats {
	return c.cache.Stats()
}
