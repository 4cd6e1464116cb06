// Package mnemonic holds the immutable bidirectional mapping between non-ASCII
// BMP codepoints and their short ASCII mnemonic tokens, together with the
// loader for its compact serialized form.
package mnemonic

import (
	"errors"
	"fmt"
	"iter"
)

// Codepoint range covered by a table.
const (
	MinCodepoint rune = 0x80
	MaxCodepoint rune = 0xFFFF
)

const (
	pageBits  = 8
	pageSize  = 1 << pageBits
	pageMask  = pageSize - 1
	pageCount = (int(MaxCodepoint) + 1) >> pageBits
)

// Sentinel errors returned by [Builder.Set].
var (
	ErrCodepointRange = errors.New("codepoint outside mnemonic table range")
	ErrInvalidToken   = errors.New("invalid mnemonic token")
	ErrDuplicateToken = errors.New("duplicate mnemonic token")
)

type page [pageSize]string

// Table maps codepoints in [MinCodepoint, MaxCodepoint] to tokens and back.
// A Table never changes after it is built, so it may be shared freely
// between goroutines.
type Table struct {
	pages   [pageCount]*page
	reverse map[string]rune
	size    int
}

func newTable() *Table {
	return &Table{reverse: make(map[string]rune)}
}

// put stores a mapping without validation. Later tokens overwrite earlier
// reverse entries.
func (t *Table) put(r rune, token string) {
	idx := int(r) >> pageBits

	pg := t.pages[idx]
	if pg == nil {
		pg = new(page)
		t.pages[idx] = pg
	}

	if pg[int(r)&pageMask] == "" {
		t.size++
	}

	pg[int(r)&pageMask] = token
	t.reverse[token] = r
}

// Lookup returns the token for r.
func (t *Table) Lookup(r rune) (string, bool) {
	if r < MinCodepoint || r > MaxCodepoint {
		return "", false
	}

	pg := t.pages[int(r)>>pageBits]
	if pg == nil {
		return "", false
	}

	token := pg[int(r)&pageMask]

	return token, token != ""
}

// Reverse returns the codepoint mapped to token.
func (t *Table) Reverse(token string) (rune, bool) {
	r, ok := t.reverse[token]

	return r, ok
}

// Len returns the number of mapped codepoints.
func (t *Table) Len() int {
	return t.size
}

// All yields every mapping in ascending codepoint order.
func (t *Table) All() iter.Seq2[rune, string] {
	return func(yield func(rune, string) bool) {
		for idx, pg := range t.pages {
			if pg == nil {
				continue
			}

			for low, token := range pg {
				if token == "" {
					continue
				}

				if !yield(rune(idx<<pageBits|low), token) {
					return
				}
			}
		}
	}
}

// ValidToken reports whether token may appear in a table: non-empty,
// printable ASCII, and free of the escape metacharacters [ ] # { }.
func ValidToken(token string) bool {
	if token == "" {
		return false
	}

	for i := range len(token) {
		c := token[i]
		if !isTokenByte(c) {
			return false
		}

		switch c {
		case '[', ']', '#', '{', '}':
			return false
		}
	}

	return true
}

func isTokenByte(c byte) bool {
	return c > ' ' && c < 0x7F
}

// Builder assembles a Table from validated mappings.
type Builder struct {
	table *Table
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{table: newTable()}
}

// Set maps r to token. Unlike the loader, Set enforces the table invariants:
// the codepoint range, the token alphabet, and token uniqueness.
func (b *Builder) Set(r rune, token string) error {
	if r < MinCodepoint || r > MaxCodepoint {
		return fmt.Errorf("%w: U+%04X", ErrCodepointRange, r)
	}

	if !ValidToken(token) {
		return fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	if prev, ok := b.table.reverse[token]; ok && prev != r {
		return fmt.Errorf("%w: %q used by U+%04X and U+%04X", ErrDuplicateToken, token, prev, r)
	}

	if old, ok := b.table.Lookup(r); ok {
		delete(b.table.reverse, old)
	}

	b.table.put(r, token)

	return nil
}

// Build returns the assembled Table. The Builder must not be used afterwards.
func (b *Builder) Build() *Table {
	t := b.table
	b.table = nil

	return t
}
