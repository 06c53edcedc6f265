// Package memory persists the learned artist-name table in SQLite.
//
// Each row is keyed by the normalized (lowercase, whitespace-collapsed) name
// and carries a confidence score and an occurrence counter. Rows are created
// on first sighting and reinforced on every re-sighting; they are never
// deleted. Weak alias rows seeded from prefixes of known names share the same
// table with a confidence of one.
//
// The Store serializes writes behind a single lock per instance while reads
// may proceed concurrently. The schema version lives in schema_version; a
// database at any other version is dropped and recreated rather than
// migrated.
package memory
