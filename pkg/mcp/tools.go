package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/levenshtein"
	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

// Tool name constants.
const (
	ToolNameEncode = "mnemonify_encode"
	ToolNameDecode = "mnemonify_decode"
	ToolNameLookup = "mnemonic_lookup"
)

// MaxTextInputBytes is the maximum allowed size for text input (1 MB).
const MaxTextInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrTextTooLarge indicates the text input exceeds the size limit.
	ErrTextTooLarge = errors.New("text input exceeds maximum size")
	// ErrEmptyQuery indicates the query parameter is empty.
	ErrEmptyQuery = errors.New("query parameter is required and must not be empty")
	// ErrNoMnemonic indicates the lookup found nothing.
	ErrNoMnemonic = errors.New("no mnemonic found")
)

// EncodeInput is the input schema for the mnemonify_encode tool.
type EncodeInput struct {
	Text string `json:"text" jsonschema:"Unicode text to encode"`
}

// EncodeOutput is the structured result of mnemonify_encode.
type EncodeOutput struct {
	Encoded string `json:"encoded" jsonschema:"ASCII-only mnemonified text"`
}

// DecodeInput is the input schema for the mnemonify_decode tool.
type DecodeInput struct {
	Text   string `json:"text"             jsonschema:"mnemonified text to decode"`
	Strict bool   `json:"strict,omitempty" jsonschema:"reject malformed escapes instead of passing them through"`
}

// DecodeOutput is the structured result of mnemonify_decode.
type DecodeOutput struct {
	Decoded string   `json:"decoded"         jsonschema:"original Unicode text"`
	UTF16   []uint16 `json:"utf16,omitempty" jsonschema:"exact UTF-16 code units, set only when the text holds lone surrogates"`
}

// loneSurrogateNote accompanies decoded text that JSON cannot carry exactly.
const loneSurrogateNote = "decoded text contains lone surrogates, which JSON strings " +
	"replace with U+FFFD; the utf16 field holds the exact code units"

// LookupInput is the input schema for the mnemonic_lookup tool.
type LookupInput struct {
	Query string `json:"query" jsonschema:"a single character, a mnemonic such as u: or a codepoint such as U+00FC"`
}

// LookupOutput is the structured result of mnemonic_lookup.
type LookupOutput struct {
	Codepoint string `json:"codepoint" jsonschema:"codepoint in U+XXXX form"`
	Character string `json:"character" jsonschema:"the character itself"`
	Mnemonic  string `json:"mnemonic"  jsonschema:"the mnemonic token"`
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func checkSize(text string) error {
	if len(text) > MaxTextInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTextTooLarge, len(text), MaxTextInputBytes)
	}

	return nil
}

func (s *Server) handleEncode(
	_ context.Context, _ *mcpsdk.CallToolRequest, input EncodeInput,
) (*mcpsdk.CallToolResult, EncodeOutput, error) {
	if err := checkSize(input.Text); err != nil {
		return nil, EncodeOutput{}, err
	}

	encoded := s.codec.Encode(input.Text)

	return textResult(encoded), EncodeOutput{Encoded: encoded}, nil
}

func (s *Server) handleDecode(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input DecodeInput,
) (*mcpsdk.CallToolResult, DecodeOutput, error) {
	if err := checkSize(input.Text); err != nil {
		return nil, DecodeOutput{}, err
	}

	mode := codec.Lax
	if input.Strict {
		mode = codec.Strict
	}

	decoded, err := s.codec.Decode(input.Text, mode)
	if err != nil {
		s.logger.WarnContext(ctx, "strict decode rejected input", slog.Any("error", err))

		return nil, DecodeOutput{}, err
	}

	if utf8.ValidString(decoded) {
		return textResult(decoded), DecodeOutput{Decoded: decoded}, nil
	}

	units, err := s.codec.DecodeUTF16(input.Text, mode)
	if err != nil {
		return nil, DecodeOutput{}, err
	}

	result := textResult(decoded)
	result.Content = append(result.Content, &mcpsdk.TextContent{Text: loneSurrogateNote})

	return result, DecodeOutput{Decoded: decoded, UTF16: units}, nil
}

func (s *Server) handleLookup(
	_ context.Context, _ *mcpsdk.CallToolRequest, input LookupInput,
) (*mcpsdk.CallToolResult, LookupOutput, error) {
	out, err := Lookup(s.codec.Table(), input.Query)
	if err != nil {
		return nil, LookupOutput{}, err
	}

	text := fmt.Sprintf("%s %s [%s]", out.Codepoint, out.Character, out.Mnemonic)

	return textResult(text), out, nil
}

// Lookup resolves query against table. A single character is looked up
// by codepoint, a U+XXXX string by its value, and anything else as a token.
func Lookup(table *mnemonic.Table, query string) (LookupOutput, error) {
	if query == "" {
		return LookupOutput{}, ErrEmptyQuery
	}

	if r, ok := parseCodepoint(query); ok {
		token, found := table.Lookup(r)
		if !found {
			return LookupOutput{}, fmt.Errorf("%w for U+%04X", ErrNoMnemonic, r)
		}

		return lookupOutput(r, token), nil
	}

	r, found := table.Reverse(query)
	if !found {
		if hints := Suggest(table, query); len(hints) > 0 {
			return LookupOutput{}, fmt.Errorf("%w for %q, did you mean %s", ErrNoMnemonic, query, strings.Join(hints, " "))
		}

		return LookupOutput{}, fmt.Errorf("%w for %q", ErrNoMnemonic, query)
	}

	return lookupOutput(r, query), nil
}

// Suggestion limits for unknown tokens.
const (
	suggestMaxDistance = 1
	suggestLimit       = 5
)

// Suggest returns the tokens closest to an unknown token, nearest first.
func Suggest(table *mnemonic.Table, query string) []string {
	matches := levenshtein.Closest(query, table.All(), suggestMaxDistance, suggestLimit)

	hints := make([]string, 0, len(matches))
	for _, m := range matches {
		hints = append(hints, m.Token)
	}

	return hints
}

// parseCodepoint accepts a single non-ASCII character or a U+XXXX string.
func parseCodepoint(query string) (rune, bool) {
	if r, size := utf8.DecodeRuneInString(query); size == len(query) && r >= utf8.RuneSelf && r != utf8.RuneError {
		return r, true
	}

	hex, ok := strings.CutPrefix(strings.ToUpper(query), "U+")
	if !ok {
		return 0, false
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || value > utf8.MaxRune {
		return 0, false
	}

	return rune(value), true
}

func lookupOutput(r rune, token string) LookupOutput {
	return LookupOutput{
		Codepoint: fmt.Sprintf("U+%04X", r),
		Character: string(r),
		Mnemonic:  token,
	}
}
