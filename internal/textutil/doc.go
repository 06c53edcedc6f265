// Package textutil normalizes the short, noisy strings that arrive in
// notification payloads before they are parsed.
//
// The primary use cases are:
//   - Collapsing whitespace runs and trimming (Normalize)
//   - Folding typographic quotes to their ASCII forms (FoldQuotes)
//   - Splitting text into lowercase, punctuation-trimmed tokens (Tokenize)
//   - Building case-insensitive lookup keys (Key)
//
// Normalize is idempotent. Tokenize always normalizes first, so callers can
// pass raw text.
package textutil
