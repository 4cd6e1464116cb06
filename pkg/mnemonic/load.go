package mnemonic

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pierrec/lz4/v4"
)

// Sentinel load failures. A [*LoadError] unwraps to exactly one of them.
var (
	ErrRead      = errors.New("read failed")
	ErrTruncated = errors.New("truncated record")
	ErrMalformed = errors.New("malformed record")
)

// lz4FrameMagic is the little-endian LZ4 frame magic number 0x184D2204.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4D, 0x18}

// LoadError reports why a table source could not be turned into a Table.
type LoadError struct {
	Path   string // Source file, empty for readers.
	Offset int64  // Byte offset of the failing record.
	Kind   error  // One of ErrRead, ErrTruncated, ErrMalformed.
	Err    error  // Underlying cause, if any.
}

func (e *LoadError) Error() string {
	src := "mnemonic table"
	if e.Path != "" {
		src += " " + e.Path
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v at offset %d: %v", src, e.Kind, e.Offset, e.Err)
	}

	return fmt.Sprintf("%s: %v at offset %d", src, e.Kind, e.Offset)
}

func (e *LoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}

	return []error{e.Kind}
}

// Load parses the serialized table format from r.
//
// The source is a sequence of records. Each record is a header character
// followed by a token. A space header means "previous codepoint + 1",
// any other header is the codepoint itself. The token ends at the first
// character outside 0x21..0x7E. Tokens are not re-checked for uniqueness:
// when two records share a token the later one wins in the reverse index.
func Load(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	table := newTable()

	var (
		current rune
		offset  int64
		token   strings.Builder
	)

	ch, size, err := br.ReadRune()

	for err == nil {
		start := offset

		if ch == utf8.RuneError && size == 1 {
			return nil, &LoadError{Offset: start, Kind: ErrMalformed, Err: errors.New("invalid UTF-8")}
		}

		if ch == ' ' {
			current++
		} else {
			current = ch
		}

		offset += int64(size)

		if current < MinCodepoint || current > MaxCodepoint {
			return nil, &LoadError{Offset: start, Kind: ErrMalformed, Err: fmt.Errorf("codepoint U+%04X out of range", current)}
		}

		token.Reset()

		for {
			ch, size, err = br.ReadRune()
			if err != nil || ch >= utf8.RuneSelf || !isTokenByte(byte(ch)) {
				break
			}

			token.WriteByte(byte(ch))
			offset += int64(size)
		}

		if token.Len() == 0 {
			if errors.Is(err, io.EOF) {
				return nil, &LoadError{Offset: start, Kind: ErrTruncated}
			}

			if err == nil {
				return nil, &LoadError{Offset: start, Kind: ErrMalformed, Err: errors.New("empty token")}
			}
		}

		if err == nil || errors.Is(err, io.EOF) {
			table.put(current, token.String())
		}
	}

	if !errors.Is(err, io.EOF) {
		return nil, &LoadError{Offset: offset, Kind: ErrRead, Err: err}
	}

	return table, nil
}

// LoadFile loads a table from path. Files starting with the LZ4 frame magic
// are decompressed transparently.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrRead, Err: err}
	}

	defer f.Close()

	br := bufio.NewReader(f)

	var src io.Reader = br

	head, peekErr := br.Peek(len(lz4FrameMagic))
	if peekErr == nil && bytes.Equal(head, lz4FrameMagic) {
		src = lz4.NewReader(br)
	}

	table, err := Load(src)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}

		return nil, err
	}

	return table, nil
}
