package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/dryscan/pkg/models"
)

// Policy selects how a method body is reduced before comparison.
type Policy string

const (
	// PolicyCompact strips comments and all whitespace and deletes the
	// category labels from the text. Every body becomes a single word, so
	// body distance is 0 for identical bodies and 1 otherwise.
	PolicyCompact Policy = "compact"

	// PolicyTokens normalizes each lexical token of the body, drops
	// comments and keeps the category labels as words. Body distance then
	// counts token edits.
	PolicyTokens Policy = "tokens"
)

func (p Policy) String() string { return string(p) }

// ParsePolicy converts a config or flag value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyCompact):
		return PolicyCompact, nil
	case string(PolicyTokens):
		return PolicyTokens, nil
	default:
		return "", fmt.Errorf("unknown body policy %q (want %q or %q)", s, PolicyCompact, PolicyTokens)
	}
}

// Method returns the normalized body of m under the policy.
func (p Policy) Method(m models.Method) string {
	if p == PolicyTokens {
		return Tokens(m.BodyTokens)
	}
	return Body(m.Body)
}

var (
	singleLineComment = regexp.MustCompile(`(?m)//.*$`)
	multiLineComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// Deleted in this order; a deletion may join fragments into a later label.
var compactDeletions = []string{" ", "\n", "\r", LabelComments, LabelLoop, LabelNumber, LabelCharacter}

// Body normalizes raw method body text under PolicyCompact.
func Body(raw string) string {
	text := StripComments(raw)
	text = CollapseWhitespace(text)

	// The collapsed text is classified as one plain token, which leaves it
	// unchanged; only the label deletions below have a visible effect.
	text = Token(models.Token{Kind: models.KindOther, Text: text})

	for _, s := range compactDeletions {
		text = strings.ReplaceAll(text, s, "")
	}
	return strings.TrimSpace(text)
}

// StripComments removes // line comments and /* */ block comments.
func StripComments(code string) string {
	code = singleLineComment.ReplaceAllString(code, "")
	return multiLineComment.ReplaceAllString(code, "")
}

// CollapseWhitespace replaces every whitespace run with one space and trims.
func CollapseWhitespace(code string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(code, " "))
}

// Tokens normalizes a body's token stream under PolicyTokens.
func Tokens(tokens []models.Token) string {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind.IsComment() {
			continue
		}
		if s := Token(tok); s != "" {
			words = append(words, s)
		}
	}
	return strings.Join(words, " ")
}
