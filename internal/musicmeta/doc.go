// Package musicmeta enriches now-playing payloads with data the
// notification text lacks: cover artwork for a title/artist pair and a short
// artist profile (genre, country, popular songs, release span, biography).
//
// Lookups are best effort. Each remote call that fails or returns nothing
// leaves its fields empty and the rest of the result intact; nothing here
// returns an error to the caller.
package musicmeta
