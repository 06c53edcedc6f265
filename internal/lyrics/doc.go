// Package lyrics resolves lyrics for a title and artist through an ordered
// cascade of lookups: exact get, track/artist search, then free-text search.
//
// The cascade stops at the first attempt that yields non-empty lyrics and
// records every step in Result.Trace. Failures never escape Resolve; callers
// see a not-found or unavailable message instead.
package lyrics
