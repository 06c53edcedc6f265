package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tokenEdgeCutset lists the characters stripped from both ends of a token.
const tokenEdgeCutset = "\".,;:!?()“”‘’"

// quoteCutset lists the characters TrimQuotes removes from both ends.
// Apostrophes stay: they open titles such as "'Round Midnight".
const quoteCutset = "\"“”«»„‟"

// quoteFolder maps typographic quotes to their ASCII equivalents.
var quoteFolder = strings.NewReplacer(
	"“", "\"",
	"”", "\"",
	"„", "\"",
	"‟", "\"",
	"«", "\"",
	"»", "\"",
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
)

// Normalize collapses every run of whitespace to a single space and trims
// the result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FoldQuotes replaces curly and angled quotes with straight ASCII quotes.
func FoldQuotes(text string) string {
	return quoteFolder.Replace(text)
}

// TrimQuotes normalizes text and strips surrounding quote characters.
func TrimQuotes(text string) string {
	trimmed := strings.Trim(Normalize(text), quoteCutset)
	return Normalize(trimmed)
}

// Lower lowercases text using Unicode-aware case mapping.
func Lower(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Key returns the case-insensitive, whitespace-collapsed form used to
// compare and store names.
func Key(text string) string {
	return Lower(Normalize(text))
}

// Tokenize normalizes text, splits it on spaces, lowercases each token and
// strips punctuation from token edges. Empty tokens are dropped.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return []string{}
	}
	raw := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.Trim(Lower(token), tokenEdgeCutset)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
