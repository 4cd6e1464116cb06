// Package annotate supplies optional human-readable hints for codepoints
// that have no mnemonic. The encoder appends a hint in braces after the hex
// escape, e.g. [#20AC{EU}].
package annotate

// Annotator returns a short ASCII hint for r, or false when it has none.
type Annotator interface {
	Annotate(r rune) (string, bool)
}

// Func adapts an ordinary function to the Annotator interface.
type Func func(r rune) (string, bool)

// Annotate calls f(r).
func (f Func) Annotate(r rune) (string, bool) {
	return f(r)
}

// None is the annotator that never has a hint.
var None Annotator = Func(func(rune) (string, bool) { return "", false })

// unknownHint is the placeholder transliteration tables use for codepoints
// they do not cover.
const unknownHint = "[?]"

// ValidHint reports whether hint can be embedded in an escape without
// changing how it parses: non-empty printable ASCII with no braces or
// square brackets.
func ValidHint(hint string) bool {
	if hint == "" || hint == unknownHint {
		return false
	}

	for i := range len(hint) {
		switch c := hint[i]; {
		case c < ' ' || c > '~':
			return false
		case c == '{' || c == '}' || c == '[' || c == ']':
			return false
		}
	}

	return true
}

type sanitized struct {
	inner Annotator
}

// Sanitize wraps a so that hints failing [ValidHint] are reported as absent.
// Wrapping nil yields None; wrapping an already sanitized annotator returns it
// unchanged.
func Sanitize(a Annotator) Annotator {
	switch a := a.(type) {
	case nil:
		return None
	case sanitized:
		return a
	default:
		return sanitized{inner: a}
	}
}

func (s sanitized) Annotate(r rune) (string, bool) {
	hint, ok := s.inner.Annotate(r)
	if !ok || !ValidHint(hint) {
		return "", false
	}

	return hint, true
}
