package codec

import (
	"unicode/utf16"
	"unicode/utf8"
)

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

func isSurrogate(r rune) bool {
	return r >= surrogateMin && r <= surrogateMax
}

func isHighSurrogate(r rune) bool {
	return r >= surrogateMin && r < 0xDC00
}

func isLowSurrogate(r rune) bool {
	return r >= 0xDC00 && r <= surrogateMax
}

// nextCodepoint decodes the codepoint starting at s[i]. Besides valid UTF-8
// it accepts the three-byte generalized form of a surrogate (ED A0..BF xx),
// which Go strings can carry. A generalized high surrogate directly followed
// by a generalized low one is read as the supplementary codepoint they form.
// Any other invalid byte yields utf8.RuneError with size 1.
func nextCodepoint(s string, i int) (rune, int) {
	r, size := utf8.DecodeRuneInString(s[i:])
	if r != utf8.RuneError || size != 1 {
		return r, size
	}

	high, ok := generalizedSurrogate(s, i)
	if !ok {
		return utf8.RuneError, 1
	}

	if isHighSurrogate(high) {
		if low, ok := generalizedSurrogate(s, i+3); ok && isLowSurrogate(low) {
			return utf16.DecodeRune(high, low), 6
		}
	}

	return high, 3
}

// generalizedSurrogate decodes a three-byte surrogate at s[i].
func generalizedSurrogate(s string, i int) (rune, bool) {
	if i+2 >= len(s) || s[i] != 0xED || s[i+1] < 0xA0 || s[i+1] > 0xBF || s[i+2]&0xC0 != 0x80 {
		return 0, false
	}

	return 0xD000 | rune(s[i+1]&0x3F)<<6 | rune(s[i+2]&0x3F), true
}

// appendCodepoint is utf8.AppendRune extended to write surrogates in their
// generalized three-byte form instead of replacing them. A low surrogate
// written right after a high one at the end of b joins it into a single
// four-byte sequence, so the result stays well-formed WTF-8.
func appendCodepoint(b []byte, r rune) []byte {
	if !isSurrogate(r) {
		return utf8.AppendRune(b, r)
	}

	if n := len(b); isLowSurrogate(r) && n >= 3 {
		if high, ok := generalizedSurrogate(string(b[n-3:]), 0); ok && isHighSurrogate(high) {
			return utf8.AppendRune(b[:n-3], utf16.DecodeRune(high, r))
		}
	}

	return append(b, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
}
