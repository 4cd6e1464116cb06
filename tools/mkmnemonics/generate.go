package main

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

// combiningMnemonics maps the combining diacritical marks to the mnemonic
// suffix of their spacing counterparts, in the table record format.
const combiningMnemonics = "\u0300! '\u0303? -\u0306( . :\u030B\" <\u030F!!\u0311)" +
	"\u0313=, ==,\u0326-, ,\u0338/\u0342=?\u0345--,"

// errata lists corrections published for RFC 1345 (RFC Editor erratum 2683).
var errata = map[rune]string{
	0x1E4B: "n->",
	0x1E69: "s.-.",
}

// generate turns the parsed RFC mnemonics into a validated table. It applies
// the errata, assigns "|x" mnemonics to the combining marks, and derives a
// mnemonic for every precomposed character whose canonical decomposition
// starts with a character that has one.
func generate(rfc map[rune]string) (*mnemonic.Table, error) {
	combining, err := mnemonic.Load(strings.NewReader(combiningMnemonics))
	if err != nil {
		return nil, fmt.Errorf("parse combining mnemonics: %w", err)
	}

	mnemonics := make(map[rune]string, len(rfc)+len(errata))

	for r, token := range rfc {
		mnemonics[r] = token
	}

	for r, token := range errata {
		mnemonics[r] = token
	}

	for r := mnemonic.MinCodepoint; r <= mnemonic.MaxCodepoint; r++ {
		if _, ok := mnemonics[r]; ok || (r >= 0xD800 && r <= 0xDFFF) {
			continue
		}

		if suffix, ok := combining.Lookup(r); ok {
			mnemonics[r] = "|" + suffix

			continue
		}

		if token, ok := decomposed(r, mnemonics, combining); ok {
			mnemonics[r] = token
		}
	}

	b := mnemonic.NewBuilder()

	for r := mnemonic.MinCodepoint; r <= mnemonic.MaxCodepoint; r++ {
		token, ok := mnemonics[r]
		if !ok {
			continue
		}

		if !assigned(r) {
			return nil, fmt.Errorf("mnemonic %q for unassigned codepoint U+%04X", token, r)
		}

		if err := b.Set(r, token); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// decomposed derives the mnemonic of r from its NFD form: the mnemonic of the
// base character followed by "|x" for every combining mark. Characters that do
// not recompose to themselves, or whose marks have no mnemonic, get none.
func decomposed(r rune, mnemonics map[rune]string, combining *mnemonic.Table) (string, bool) {
	orig := string(r)

	nfd := norm.NFD.String(orig)
	if nfd == orig || norm.NFC.String(nfd) != orig {
		return "", false
	}

	base, size := utf8.DecodeRuneInString(nfd)

	var sb strings.Builder

	switch {
	case base < utf8.RuneSelf:
		sb.WriteRune(base)
	case mnemonics[base] != "":
		sb.WriteString(mnemonics[base])
	default:
		return "", false
	}

	for _, mark := range nfd[size:] {
		suffix, ok := combining.Lookup(mark)
		if !ok {
			return "", false
		}

		sb.WriteByte('|')
		sb.WriteString(suffix)
	}

	return sb.String(), true
}

func assigned(r rune) bool {
	return unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C)
}
