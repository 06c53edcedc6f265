package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Payload describes the current track in a transport-friendly format.
type Payload struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	SourcePackage string `json:"sourcePackage"`
	SourceType    string `json:"sourceType"`
	ArtworkURL    string `json:"artworkUrl,omitempty"`
}

// Signal is a notification as posted by the host integration.
type Signal struct {
	Key           string `json:"key"`
	SourcePackage string `json:"sourcePackage"`
	Title         string `json:"title,omitempty"`
	BigTitle      string `json:"bigTitle,omitempty"`
	Text          string `json:"text,omitempty"`
	SubText       string `json:"subText,omitempty"`
	BigText       string `json:"bigText,omitempty"`
	KnownNative   bool   `json:"knownNative,omitempty"`
	Transport     bool   `json:"transport,omitempty"`
	MediaSession  bool   `json:"mediaSession,omitempty"`
	Ongoing       bool   `json:"ongoing,omitempty"`
	Playing       bool   `json:"playing,omitempty"`
	ArtworkURL    string `json:"artworkUrl,omitempty"`

	Media *MediaMetadata `json:"media,omitempty"`
}

// MediaMetadata is what the media session reports about the playing item.
type MediaMetadata struct {
	Title        string `json:"title,omitempty"`
	DisplayTitle string `json:"displayTitle,omitempty"`
	Artist       string `json:"artist,omitempty"`
	AlbumArtist  string `json:"albumArtist,omitempty"`
	Author       string `json:"author,omitempty"`
	Writer       string `json:"writer,omitempty"`
	Composer     string `json:"composer,omitempty"`
	Subtitle     string `json:"subtitle,omitempty"`
	ArtURI       string `json:"artUri,omitempty"`
}

// NowPlayingResponse wraps the current payload. Payload is nil when nothing
// is playing.
type NowPlayingResponse struct {
	Playing bool     `json:"playing"`
	Payload *Payload `json:"payload,omitempty"`
}

// SignalResponse reports the listener state after a signal change.
type SignalResponse struct {
	Emitted bool     `json:"emitted"`
	Current *Payload `json:"current,omitempty"`
}

// ReconnectRequest replaces the active signal set.
type ReconnectRequest struct {
	Signals []Signal `json:"signals"`
}

// RemoveRequest drops one active signal.
type RemoveRequest struct {
	Key string `json:"key"`
}

// Event is one entry in the now-playing event stream.
type Event struct {
	Sequence  uint64   `json:"seq"`
	Timestamp string   `json:"ts"`
	Payload   *Payload `json:"payload,omitempty"`
	Cleared   bool     `json:"cleared,omitempty"`
}

// EventsResponse wraps streamed events and the cursor for the next fetch.
type EventsResponse struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// LyricsMetadata describes the entry lyrics were taken from.
type LyricsMetadata struct {
	TrackName    string  `json:"trackName,omitempty"`
	ArtistName   string  `json:"artistName,omitempty"`
	AlbumName    string  `json:"albumName,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	Instrumental bool    `json:"instrumental,omitempty"`
	Year         int     `json:"year,omitempty"`
	Synced       bool    `json:"synced,omitempty"`
}

// LyricsResponse is the outcome of a lyrics resolution.
type LyricsResponse struct {
	Status   string          `json:"status"`
	Lyrics   string          `json:"lyrics"`
	Metadata *LyricsMetadata `json:"metadata,omitempty"`
	Trace    []string        `json:"trace"`
}

// LyricsCandidate is one search hit.
type LyricsCandidate struct {
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName,omitempty"`
	Lyrics     string `json:"lyrics,omitempty"`
}

// SearchResponse wraps ranked search candidates.
type SearchResponse struct {
	Candidates []LyricsCandidate `json:"candidates"`
}

// Artist is one learned artist name.
type Artist struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Confidence  int    `json:"confidence"`
	Occurrences int    `json:"occurrences"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// MemoryResponse wraps the learned artist table.
type MemoryResponse struct {
	Artists []Artist `json:"artists"`
}

// CheckResult mirrors a preflight check outcome.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool          `json:"running"`
	PID           int           `json:"pid"`
	MemoryDBPath  string        `json:"memoryDbPath"`
	LockFilePath  string        `json:"lockFilePath"`
	APIAddress    string        `json:"apiAddress,omitempty"`
	KnownArtists  int           `json:"knownArtists"`
	ActiveSignals int           `json:"activeSignals"`
	LastEventSeq  uint64        `json:"lastEventSeq,omitempty"`
	Current       *Payload      `json:"current,omitempty"`
	Checks        []CheckResult `json:"checks"`
}

// ArtistInsight is the catalogue and encyclopedia profile of an artist.
type ArtistInsight struct {
	ArtistName        string   `json:"artistName"`
	PrimaryGenre      string   `json:"primaryGenre,omitempty"`
	Country           string   `json:"country,omitempty"`
	ShortBio          string   `json:"shortBio,omitempty"`
	PopularReleases   []string `json:"popularReleases"`
	FirstReleaseYear  int      `json:"firstReleaseYear,omitempty"`
	LatestReleaseYear int      `json:"latestReleaseYear,omitempty"`
}
