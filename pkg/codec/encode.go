package codec

import (
	"unicode"
	"unicode/utf16"
)

const hexDigits = "0123456789ABCDEF"

// Encode returns the ASCII-only form of s. Pure ASCII without square
// brackets is returned unchanged.
//
// Lone surrogates carried in generalized UTF-8 are encoded as their hex
// value and restored byte for byte by Decode. A generalized high surrogate
// followed by a low one is read as the character the pair encodes. Any
// other invalid UTF-8 byte is encoded as [#FFFD], the one lossy case.
func (c *Codec) Encode(s string) string {
	i := plainPrefix(s)
	if i == len(s) {
		return s
	}

	buf := make([]byte, 0, len(s)+len(s)/2+8)
	buf = append(buf, s[:i]...)

	for i < len(s) {
		if b := s[i]; b < 0x80 {
			buf = c.appendEncoded(buf, rune(b))
			i++

			continue
		}

		r, size := nextCodepoint(s, i)
		buf = c.appendEncoded(buf, r)
		i += size
	}

	return string(buf)
}

// EncodeUTF16 is Encode for UTF-16 code units. Valid surrogate pairs are
// combined into one codepoint; a lone surrogate is encoded by its own value.
func (c *Codec) EncodeUTF16(units []uint16) string {
	buf := make([]byte, 0, len(units)+8)

	for i := 0; i < len(units); i++ {
		r := rune(units[i])

		if utf16.IsSurrogate(r) && i+1 < len(units) {
			if pair := utf16.DecodeRune(r, rune(units[i+1])); pair != unicode.ReplacementChar {
				r = pair
				i++
			}
		}

		buf = c.appendEncoded(buf, r)
	}

	return string(buf)
}

// plainPrefix returns the length of the leading run of s that encodes to
// itself.
func plainPrefix(s string) int {
	for i := range len(s) {
		if b := s[i]; b >= 0x80 || b == '[' || b == ']' {
			return i
		}
	}

	return len(s)
}

func (c *Codec) appendEncoded(buf []byte, r rune) []byte {
	switch {
	case r == '[':
		return append(buf, "[[]"...)
	case r == ']':
		return append(buf, "[]]"...)
	case r < 0x80:
		return append(buf, byte(r))
	}

	if token, ok := c.table.Lookup(r); ok {
		buf = append(buf, '[')
		buf = append(buf, token...)

		return append(buf, ']')
	}

	buf = append(buf, '[', '#')
	buf = appendHex(buf, r)

	if hint, ok := c.annotator.Annotate(r); ok {
		buf = append(buf, '{')
		buf = append(buf, hint...)
		buf = append(buf, '}')
	}

	return append(buf, ']')
}

// appendHex writes r as uppercase hex without leading zeros.
func appendHex(buf []byte, r rune) []byte {
	var tmp [8]byte

	n := len(tmp)
	v := uint32(r)

	for {
		n--
		tmp[n] = hexDigits[v&0xF]
		v >>= 4

		if v == 0 {
			break
		}
	}

	return append(buf, tmp[n:]...)
}
