package mnemonic

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/zeebo/blake3"
)

// WriteTo serializes t in the format read by [Load]. Consecutive codepoints
// share the one-byte space header, so the output is the canonical form of t.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	var (
		written int64
		last    rune
		buf     [utf8.UTFMax]byte
	)

	for r, token := range t.All() {
		header := buf[:1]
		if r == last+1 {
			header[0] = ' '
		} else {
			header = buf[:utf8.EncodeRune(buf[:], r)]
		}

		n, err := bw.Write(header)
		written += int64(n)

		if err != nil {
			return written, fmt.Errorf("write header: %w", err)
		}

		n, err = bw.WriteString(token)
		written += int64(n)

		if err != nil {
			return written, fmt.Errorf("write token: %w", err)
		}

		last = r
	}

	err := bw.Flush()
	if err != nil {
		return written, fmt.Errorf("flush table: %w", err)
	}

	return written, nil
}

// Fingerprint returns the hex BLAKE3-256 digest of the canonical serialized
// form of t. Two tables with the same mappings have the same fingerprint.
func (t *Table) Fingerprint() string {
	var buf bytes.Buffer

	// Writes to a bytes.Buffer cannot fail.
	_, _ = t.WriteTo(&buf)

	sum := blake3.Sum256(buf.Bytes())

	return hex.EncodeToString(sum[:])
}
