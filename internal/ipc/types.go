package ipc

import "nowplaying/internal/api"

// Payload mirrors the HTTP API payload DTO for IPC callers.
type Payload = api.Payload

// Signal mirrors the HTTP API signal DTO for IPC callers.
type Signal = api.Signal

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse = api.DaemonStatus

// CurrentRequest fetches the current payload.
type CurrentRequest struct{}

// CurrentResponse wraps the current payload.
type CurrentResponse = api.NowPlayingResponse

// PostSignalRequest records a posted or updated notification.
type PostSignalRequest struct {
	Signal Signal `json:"signal"`
}

// ReconnectRequest replaces the active notification set.
type ReconnectRequest = api.ReconnectRequest

// RemoveSignalRequest drops an active notification.
type RemoveSignalRequest = api.RemoveRequest

// SignalResponse reports listener state after a signal change.
type SignalResponse = api.SignalResponse

// FetchLyricsRequest resolves lyrics. Blank title and artist mean the
// current track. A nil Synced uses the configured preference.
type FetchLyricsRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Synced *bool  `json:"synced,omitempty"`
}

// FetchLyricsResponse is the lyrics resolution outcome.
type FetchLyricsResponse = api.LyricsResponse

// SearchLyricsRequest runs a free-text lyrics search.
type SearchLyricsRequest struct {
	Query string `json:"query"`
}

// SearchLyricsResponse wraps ranked candidates.
type SearchLyricsResponse = api.SearchResponse

// MemoryRequest lists learned artists.
type MemoryRequest struct{}

// MemoryResponse wraps the learned artist table.
type MemoryResponse = api.MemoryResponse

// ArtistInsightRequest looks up an artist profile. A blank artist means the
// current track's artist.
type ArtistInsightRequest struct {
	Artist string `json:"artist"`
}

// ArtistInsightResponse carries the profile when one was found.
type ArtistInsightResponse struct {
	Found   bool               `json:"found"`
	Insight *api.ArtistInsight `json:"insight,omitempty"`
}
