// Package identity turns one line of notification text into a song title and
// artist name.
//
// The Splitter tries literal separators, a trailing "by" clause, quoted
// "song" de/by "artist" patterns, and finally the Spanish "X de Y" heuristic.
// The heuristic scores every split point with HeuristicScore plus a boost
// from the learned artist memory, so names confirmed earlier win over generic
// grammar cues. Accepted artist names are written back to memory together
// with prefix aliases.
//
// Memory failures never fail a parse; they are logged and the parse continues
// with whatever the snapshot held.
package identity
