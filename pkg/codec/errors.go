package codec

import (
	"errors"
	"fmt"
)

// Reasons a strict decode fails. A [*DecodeError] unwraps to one of them.
var (
	ErrStrayCloseBracket = errors.New("unescaped ']'")
	ErrNonCanonicalHex   = errors.New("non-canonical hex escape")
	ErrInvalidEscape     = errors.New("invalid escape")
)

// DecodeError reports the first violation found by a strict decode.
type DecodeError struct {
	Input  string
	Offset int // Byte offset into Input.
	Reason error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v at offset %d", e.Reason, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}
