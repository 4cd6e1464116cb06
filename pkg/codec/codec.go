// Package codec converts arbitrary Unicode text to a readable ASCII-only
// form and back.
//
// Non-ASCII characters with a known mnemonic become [mnemonic], e.g. "ü"
// becomes "[u:]". Everything else becomes a hex escape such as [#20AC],
// optionally carrying an annotator hint: [#20AC{EU}]. The square brackets
// themselves are escaped as [[] and []].
package codec

import (
	"fmt"

	"github.com/schierlm/mnemonifier/pkg/annotate"
	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

// Mode selects how the decoder treats input that is not a valid encoding.
type Mode int

const (
	// Lax passes malformed brackets through unchanged.
	Lax Mode = iota
	// Strict rejects any input the encoder could not have produced.
	Strict
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Lax:
		return "lax"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Codec encodes and decodes mnemonified text. A Codec is immutable and safe
// for concurrent use.
type Codec struct {
	table     *mnemonic.Table
	annotator annotate.Annotator
}

// Option configures a Codec.
type Option func(*Codec)

// WithTable uses table instead of the embedded default table.
func WithTable(table *mnemonic.Table) Option {
	return func(c *Codec) {
		c.table = table
	}
}

// WithAnnotator attaches hints to hex escapes. Hints that would break the
// escape syntax are dropped.
func WithAnnotator(a annotate.Annotator) Option {
	return func(c *Codec) {
		c.annotator = annotate.Sanitize(a)
	}
}

// New returns a Codec. Without [WithTable] it uses [mnemonic.Default] and
// returns its load error, if any.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{annotator: annotate.None}

	for _, opt := range opts {
		opt(c)
	}

	if c.table == nil {
		table, err := mnemonic.Default()
		if err != nil {
			return nil, fmt.Errorf("load default mnemonic table: %w", err)
		}

		c.table = table
	}

	return c, nil
}

// Table returns the mnemonic table in use.
func (c *Codec) Table() *mnemonic.Table {
	return c.table
}
