// Package levenshtein ranks mnemonic tokens by edit distance so that a
// mistyped token can be answered with "did you mean" suggestions.
package levenshtein

import (
	"iter"
	"sort"
)

// Context computes distances reusing one scratch row between calls.
// A Context is not safe for concurrent use.
type Context struct {
	row []int
}

// Distance returns the number of single-byte insertions, deletions and
// substitutions needed to turn a into b. Tokens are ASCII, so bytes are
// characters.
func (ctx *Context) Distance(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	if len(b) == 0 {
		return len(a)
	}

	if cap(ctx.row) < len(b)+1 {
		ctx.row = make([]int, len(b)+1)
	}

	row := ctx.row[:len(b)+1]
	for j := range row {
		row[j] = j
	}

	for i := range len(a) {
		diag := row[0]
		row[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			up := row[j+1]
			row[j+1] = min(up+1, row[j]+1, diag+cost)
			diag = up
		}
	}

	return row[len(b)]
}

// Match is a candidate within the distance limit.
type Match struct {
	Token     string
	Codepoint rune
	Distance  int
}

// Closest returns up to limit candidates within maxDistance of query,
// nearest first, ties broken by token.
func Closest(query string, candidates iter.Seq2[rune, string], maxDistance, limit int) []Match {
	var (
		ctx     Context
		matches []Match
	)

	for r, token := range candidates {
		if abs(len(token)-len(query)) > maxDistance {
			continue
		}

		if d := ctx.Distance(query, token); d <= maxDistance {
			matches = append(matches, Match{Token: token, Codepoint: r, Distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}

		return matches[i].Token < matches[j].Token
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
