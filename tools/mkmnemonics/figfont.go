package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// figfontSignature opens the header line of every FIGfont.
const figfontSignature = "flf2a"

// ErrUnsupportedFont is returned for FIGfonts whose glyphs span more than one
// line; only the single-line mnemonic font carries one token per glyph.
var ErrUnsupportedFont = errors.New("unsupported FIGfont")

// requiredGlyphs lists the codepoints every FIGfont defines, in file order,
// before the code-tagged glyphs.
var requiredGlyphs = func() []rune {
	runes := make([]rune, 0, 102)

	for r := rune(' '); r <= '~'; r++ {
		runes = append(runes, r)
	}

	return append(runes, 0xC4, 0xD6, 0xDC, 0xE4, 0xF6, 0xFC, 0xDF)
}()

// parseListing reads the RFC 1345 mnemonics either from the RFC text or from
// the "mnemonic" FIGfont, which renders every character as its RFC 1345
// mnemonic.
func parseListing(r io.Reader) (map[rune]string, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(len(figfontSignature))
	if err == nil && string(head) == figfontSignature {
		return parseFIGfont(br)
	}

	return parseRFC1345(br)
}

// parseFIGfont extracts the non-ASCII mnemonics from a single-line FIGfont.
// Two-letter mnemonics are drawn as "&xy", longer ones as "&_xyz_".
func parseFIGfont(r io.Reader) (map[rune]string, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}

		lineNo++

		return sc.Text(), true
	}

	header, ok := next()
	if !ok {
		return nil, fontEnd(sc, "header")
	}

	comments, err := parseFontHeader(header)
	if err != nil {
		return nil, err
	}

	for range comments {
		if _, ok := next(); !ok {
			return nil, fontEnd(sc, "comments")
		}
	}

	mnemonics := make(map[rune]string)

	add := func(cp rune, line string) error {
		token, ok := glyphMnemonic(line)
		if !ok {
			return &ParseError{Line: lineNo, Text: line}
		}

		if cp >= utf8.RuneSelf {
			mnemonics[cp] = token
		}

		return nil
	}

	for _, cp := range requiredGlyphs {
		line, ok := next()
		if !ok {
			return nil, fontEnd(sc, "required glyphs")
		}

		if err := add(cp, line); err != nil {
			return nil, err
		}
	}

	for tag, ok := next(); ok; tag, ok = next() {
		if strings.TrimSpace(tag) == "" {
			continue
		}

		code, err := strconv.ParseInt(strings.Fields(tag)[0], 0, 32)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: tag}
		}

		line, ok := next()
		if !ok {
			return nil, fontEnd(sc, "code-tagged glyph")
		}

		if code < 0 {
			continue
		}

		if err := add(rune(code), line); err != nil {
			return nil, err
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read FIGfont: %w", err)
	}

	return mnemonics, nil
}

// parseFontHeader checks the glyph height and returns the comment line count.
func parseFontHeader(header string) (int, error) {
	fields := strings.Fields(header)
	if len(fields) < 6 || !strings.HasPrefix(fields[0], figfontSignature) {
		return 0, fmt.Errorf("%w: malformed header %q", ErrUnsupportedFont, header)
	}

	height, err := strconv.Atoi(fields[1])
	if err != nil || height != 1 {
		return 0, fmt.Errorf("%w: glyph height %s", ErrUnsupportedFont, fields[1])
	}

	comments, err := strconv.Atoi(fields[5])
	if err != nil || comments < 0 {
		return 0, fmt.Errorf("%w: comment line count %s", ErrUnsupportedFont, fields[5])
	}

	return comments, nil
}

// glyphMnemonic strips the end marks from a glyph line and decodes the
// mnemonic it draws.
func glyphMnemonic(line string) (string, bool) {
	if line == "" {
		return "", false
	}

	mark := line[len(line)-1]
	line = line[:len(line)-1]

	if line != "" && line[len(line)-1] == mark {
		line = line[:len(line)-1]
	}

	switch {
	case len(line) == 3 && line[0] == '&':
		return line[1:], true
	case len(line) > 3 && strings.HasPrefix(line, "&_") && strings.HasSuffix(line, "_"):
		return line[2 : len(line)-1], true
	case len(line) == 1:
		// ASCII glyphs draw the character itself.
		return line, true
	default:
		return "", false
	}
}

func fontEnd(sc *bufio.Scanner, part string) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read FIGfont: %w", err)
	}

	return fmt.Errorf("%w: file ends in %s", ErrUnsupportedFont, part)
}
