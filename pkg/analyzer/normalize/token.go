// Package normalize maps tokens and method bodies to canonical forms so that
// superficial differences (literal values, loop keyword choice, comments,
// whitespace) do not count against similarity.
package normalize

import (
	"strings"

	"github.com/panbanda/dryscan/pkg/models"
)

// Labels substituted for whole token categories.
const (
	LabelNumber    = "NUMBER"
	LabelLoop      = "LOOP"
	LabelCharacter = "CHARACTER"
	LabelComments  = "COMMENTS"
)

// Token returns the canonical form of a single token.
func Token(tok models.Token) string {
	switch {
	case tok.Kind == models.KindNumericLiteral:
		return LabelNumber
	case tok.Kind.IsLoopKeyword():
		return LabelLoop
	case tok.Kind == models.KindCharacterLiteral:
		return LabelCharacter
	case tok.Kind == models.KindStringLiteral:
		return stripQuotes(tok.Text)
	case tok.Kind.IsComment():
		return LabelComments
	default:
		return tok.Text
	}
}

// stripQuotes removes at most one leading and one trailing double quote.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
