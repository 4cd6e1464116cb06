package annotate

import (
	"strings"
	"unicode/utf8"

	"github.com/gosimple/unidecode"
)

// Unidecode annotates BMP codepoints with their closest ASCII
// transliteration. Codepoints outside the BMP, surrogates, and codepoints
// the transliteration table marks as unknown get no hint.
var Unidecode Annotator = Func(unidecodeHint)

func unidecodeHint(r rune) (string, bool) {
	if r > 0xFFFF || !utf8.ValidRune(r) {
		return "", false
	}

	hint := unidecode.Unidecode(string(r))
	if hint == "" || hint == unknownHint || strings.ContainsAny(hint, "{}") {
		return "", false
	}

	return hint, true
}
