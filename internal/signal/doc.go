// Package signal models raw notification events and extracts a now-playing
// payload from them.
//
// Classify routes a Signal to the native assistant path (allow-listed
// packages or the native flag), the media player path (media session plus a
// transport or ongoing notification), or unknown. Ignored packages and media
// sessions that are not playing never produce a payload.
//
// Extractor.Extract first pairs a title with a distinct artist field as-is.
// Native signals read title then big title against text and sub text; media
// signals read the session metadata first and fall back to the big text for
// the artist. Only then does it run the identity Splitter over the big
// title, title, sub text and text.
package signal
