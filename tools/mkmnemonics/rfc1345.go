package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Markers delimiting the mnemonic listing in RFC 1345.
const (
	listingStart    = " SP     0020    SPACE"
	listingEnd      = "4.  CHARSETS"
	pageFooter      = "Simonsen            "
	continuation    = "                "
	unfinishedNote  = "        e000    indicates unfinished (Mnemonic)"
	romanThousandCD = " 1000RCD        2180    ROMAN NUMERAL ONE THOUSAND C D"
)

// ErrNoListing is returned when the input does not contain the mnemonic listing.
var ErrNoListing = errors.New("RFC 1345 mnemonic listing not found")

var listingLine = regexp.MustCompile(`^ ([!-~][ -~]{5}) ([0-9a-f]{4})    [A-Za-z(/:)0-9 -]*$`)

// ParseError points at a listing line that does not have the expected shape.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: unexpected listing entry %q", e.Line, e.Text)
}

// parseRFC1345 extracts the non-ASCII mnemonics from the text of RFC 1345.
func parseRFC1345(r io.Reader) (map[rune]string, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}

		lineNo++

		return sc.Text(), true
	}

	found := false

	for line, ok := next(); ok; line, ok = next() {
		if line == listingStart {
			found = true

			break
		}
	}

	if !found {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read RFC 1345: %w", err)
		}

		return nil, ErrNoListing
	}

	mnemonics := make(map[rune]string)

	for line, ok := next(); ok; line, ok = next() {
		switch {
		case line == listingEnd:
			return mnemonics, nil
		case line == "" || strings.HasPrefix(line, continuation) || line == unfinishedNote:
			continue
		case strings.HasPrefix(line, pageFooter):
			// The footer is followed by a form feed and the next page header.
			next()
			next()

			continue
		case line == romanThousandCD:
			mnemonics[0x2180] = "1000RCD"

			continue
		}

		m := listingLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{Line: lineNo, Text: line}
		}

		cp, err := strconv.ParseUint(m[2], 16, 32)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line}
		}

		if cp < utf8.RuneSelf {
			continue
		}

		mnemonics[rune(cp)] = strings.TrimSpace(m[1])
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read RFC 1345: %w", err)
	}

	return nil, fmt.Errorf("%w: missing %q", ErrNoListing, listingEnd)
}
