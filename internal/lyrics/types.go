package lyrics

import (
	"context"

	"nowplaying/internal/services/lrclib"
)

// Messages returned in place of lyrics when a lookup fails.
const (
	NotFoundMessage    = "Lyrics not found."
	UnavailableMessage = "Lyrics are not available right now."
)

// Status summarizes how a lookup ended.
type Status string

const (
	StatusFound       Status = "found"
	StatusNotFound    Status = "not_found"
	StatusUnavailable Status = "unavailable"
)

// Metadata describes the entry lyrics were taken from. Absent fields stay
// zero.
type Metadata struct {
	TrackName    string  `json:"track_name,omitempty"`
	ArtistName   string  `json:"artist_name,omitempty"`
	AlbumName    string  `json:"album_name,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	Instrumental bool    `json:"instrumental,omitempty"`
	Year         int     `json:"year,omitempty"`
	Synced       bool    `json:"synced,omitempty"`
}

// Result is the outcome of one Resolve call.
type Result struct {
	Status   Status    `json:"status"`
	Lyrics   string    `json:"lyrics"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Trace    []string  `json:"trace"`
}

// Candidate is one free-text search hit.
type Candidate struct {
	TrackName  string `json:"track_name"`
	ArtistName string `json:"artist_name"`
	AlbumName  string `json:"album_name,omitempty"`
	Lyrics     string `json:"lyrics,omitempty"`
}

// Provider resolves lyrics and search candidates.
type Provider interface {
	Resolve(ctx context.Context, title, artist string, preferSynced bool) Result
	SearchCandidates(ctx context.Context, query string) []Candidate
}

// Source is the lyrics service the cascade queries.
type Source interface {
	Get(ctx context.Context, track, artist string) (lrclib.Record, error)
	Search(ctx context.Context, track, artist string) ([]lrclib.Record, error)
	Query(ctx context.Context, q string) ([]lrclib.Record, error)
}
