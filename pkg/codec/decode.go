package codec

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// sink receives decoded output.
type sink interface {
	literal(s string)
	codepoint(r rune)
}

type byteSink struct {
	buf []byte
}

func (b *byteSink) literal(s string) {
	if low, ok := generalizedSurrogate(s, 0); ok && isLowSurrogate(low) {
		b.buf = appendCodepoint(b.buf, low)
		s = s[3:]
	}

	b.buf = append(b.buf, s...)
}

func (b *byteSink) codepoint(r rune) {
	b.buf = appendCodepoint(b.buf, r)
}

type utf16Sink struct {
	units []uint16
}

func (u *utf16Sink) literal(s string) {
	for i := 0; i < len(s); {
		r, size := nextCodepoint(s, i)
		u.codepoint(r)
		i += size
	}
}

func (u *utf16Sink) codepoint(r rune) {
	if isSurrogate(r) {
		u.units = append(u.units, uint16(r))

		return
	}

	u.units = utf16.AppendRune(u.units, r)
}

// Decode restores the text that Encode turned into s.
//
// Decoded surrogates are written in generalized UTF-8. A high surrogate
// immediately followed by a low one, e.g. [#D834][#DD1E], joins into the
// supplementary character they encode, as it would in UTF-16.
//
// In [Lax] mode (the zero Mode) Decode never fails: brackets that do not
// start a valid escape are copied through. In [Strict] mode the first such
// violation is returned as a [*DecodeError].
func (c *Codec) Decode(s string, mode Mode) (string, error) {
	if strings.IndexByte(s, '[') < 0 {
		if mode == Strict {
			if at := strings.IndexByte(s, ']'); at >= 0 {
				return "", &DecodeError{Input: s, Offset: at, Reason: ErrStrayCloseBracket}
			}
		}

		return s, nil
	}

	out := &byteSink{buf: make([]byte, 0, len(s))}

	if err := c.decode(s, mode, out); err != nil {
		return "", err
	}

	return string(out.buf), nil
}

// DecodeLax is Decode in Lax mode.
func (c *Codec) DecodeLax(s string) string {
	out, _ := c.Decode(s, Lax) //nolint:errcheck // Lax mode never fails.

	return out
}

// DecodeStrict is Decode in Strict mode.
func (c *Codec) DecodeStrict(s string) (string, error) {
	return c.Decode(s, Strict)
}

// DecodeUTF16 is Decode producing UTF-16 code units, which can represent
// every decoded surrogate exactly.
func (c *Codec) DecodeUTF16(s string, mode Mode) ([]uint16, error) {
	out := &utf16Sink{units: make([]uint16, 0, len(s))}

	if err := c.decode(s, mode, out); err != nil {
		return nil, err
	}

	return out.units, nil
}

func (c *Codec) decode(s string, mode Mode, out sink) error {
	strict := mode == Strict
	parsed := 0

	for offset := strings.IndexByte(s, '['); offset >= 0; offset = nextIndex(s, parsed, '[') {
		if strict {
			if at := strings.IndexByte(s[parsed:offset], ']'); at >= 0 {
				return &DecodeError{Input: s, Offset: parsed + at, Reason: ErrStrayCloseBracket}
			}
		}

		out.literal(s[parsed:offset])

		end, err := c.escape(s, offset, strict, out)
		if err != nil {
			return err
		}

		if end < 0 {
			if strict {
				return &DecodeError{Input: s, Offset: offset, Reason: ErrInvalidEscape}
			}

			out.literal("[")

			end = offset + 1
		}

		parsed = end
	}

	if strict {
		if at := strings.IndexByte(s[parsed:], ']'); at >= 0 {
			return &DecodeError{Input: s, Offset: parsed + at, Reason: ErrStrayCloseBracket}
		}
	}

	out.literal(s[parsed:])

	return nil
}

// escape decodes the escape starting at the '[' at s[offset]. It returns the
// offset just past the escape, or -1 when no valid escape starts there.
func (c *Codec) escape(s string, offset int, strict bool, out sink) (int, error) {
	switch {
	case offset+2 < len(s) && s[offset+1] == '#':
		return hexEscape(s, offset, strict, out)

	case offset+1 < len(s) && (s[offset+1] == '[' || s[offset+1] == ']'):
		if offset+2 < len(s) && s[offset+2] == ']' {
			out.literal(s[offset+1 : offset+2])

			return offset + 3, nil
		}

		return -1, nil

	default:
		closing := nextIndex(s, offset+1, ']')
		if closing < 0 {
			return -1, nil
		}

		r, ok := c.table.Reverse(s[offset+1 : closing])
		if !ok {
			return -1, nil
		}

		out.codepoint(r)

		return closing + 1, nil
	}
}

// hexEscape decodes [#HEX] or [#HEX{info}] at s[offset].
func hexEscape(s string, offset int, strict bool, out sink) (int, error) {
	start := offset + 2
	hexEnd := start

	for hexEnd < len(s) && isHexDigit(s[hexEnd]) {
		hexEnd++
	}

	if hexEnd == start || hexEnd == len(s) {
		return -1, nil
	}

	end := -1

	switch s[hexEnd] {
	case ']':
		end = hexEnd + 1
	case '{':
		if at := strings.Index(s[hexEnd+1:], "}]"); at >= 0 {
			end = hexEnd + 1 + at + 2
		}
	}

	if end < 0 {
		return -1, nil
	}

	digits := s[start:hexEnd]

	value, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || value > maxCodepoint {
		return -1, nil
	}

	if strict && string(appendHex(nil, rune(value))) != digits {
		return -1, &DecodeError{Input: s, Offset: offset, Reason: ErrNonCanonicalHex}
	}

	out.codepoint(rune(value))

	return end, nil
}

const maxCodepoint = 0x10FFFF

func isHexDigit(b byte) bool {
	return '0' <= b && b <= '9' || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

// nextIndex returns the index of the first c in s at or after from, or -1.
func nextIndex(s string, from int, c byte) int {
	at := strings.IndexByte(s[from:], c)
	if at < 0 {
		return -1
	}

	return from + at
}
