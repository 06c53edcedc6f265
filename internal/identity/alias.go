package identity

import (
	"strings"
	"unicode/utf8"

	"nowplaying/internal/memory"
	"nowplaying/internal/textutil"
)

// Aliases returns the token prefixes of name, longest first, that are long
// enough to be stored as aliases. Single-token names have no aliases.
func Aliases(name string) []string {
	tokens := strings.Fields(textutil.Normalize(name))
	if len(tokens) < 2 {
		return nil
	}
	aliases := make([]string, 0, len(tokens))
	for n := len(tokens); n >= 1; n-- {
		alias := strings.Join(tokens[:n], " ")
		if utf8.RuneCountInString(alias) < memory.MinAliasLength {
			continue
		}
		aliases = append(aliases, alias)
	}
	return aliases
}
