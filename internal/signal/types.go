package signal

import "strings"

// SourceType classifies where a payload came from.
type SourceType string

const (
	SourceNativeAssistant SourceType = "native_assistant"
	SourceMediaPlayer     SourceType = "media_player"
	SourceUnknown         SourceType = "unknown"
)

// ParseSourceType maps a wire value to a SourceType, defaulting to unknown.
func ParseSourceType(value string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(value))) {
	case SourceNativeAssistant:
		return SourceNativeAssistant
	case SourceMediaPlayer:
		return SourceMediaPlayer
	default:
		return SourceUnknown
	}
}

// Signal is one raw notification as posted by the host.
type Signal struct {
	Key           string `json:"key"`
	SourcePackage string `json:"source_package"`

	Title    string `json:"title,omitempty"`
	BigTitle string `json:"big_title,omitempty"`
	Text     string `json:"text,omitempty"`
	SubText  string `json:"sub_text,omitempty"`
	BigText  string `json:"big_text,omitempty"`

	IsKnownNativeSource     bool `json:"is_known_native_source,omitempty"`
	IsTransportNotification bool `json:"is_transport_notification,omitempty"`
	HasMediaSession         bool `json:"has_media_session,omitempty"`
	IsOngoing               bool `json:"is_ongoing,omitempty"`

	// IsPlaying mirrors the media session playback state: true while it is
	// playing or buffering. Media player signals without it are ignored.
	IsPlaying bool          `json:"is_playing,omitempty"`
	Media     MediaMetadata `json:"media,omitzero"`

	ArtworkURL string `json:"artwork_url,omitempty"`
}

// MediaMetadata carries the fields a media session publishes about the item
// it is playing. They are preferred over the notification text.
type MediaMetadata struct {
	Title        string `json:"title,omitempty"`
	DisplayTitle string `json:"display_title,omitempty"`
	Artist       string `json:"artist,omitempty"`
	AlbumArtist  string `json:"album_artist,omitempty"`
	Author       string `json:"author,omitempty"`
	Writer       string `json:"writer,omitempty"`
	Composer     string `json:"composer,omitempty"`
	Subtitle     string `json:"subtitle,omitempty"`
	ArtURI       string `json:"art_uri,omitempty"`
}

// ID returns the key used to track the signal while it is active. Signals
// without a key are tracked by their source package.
func (s Signal) ID() string {
	if key := strings.TrimSpace(s.Key); key != "" {
		return key
	}
	return strings.TrimSpace(s.SourcePackage)
}

// Payload is the resolved now-playing tuple handed to clients.
type Payload struct {
	Title         string     `json:"title"`
	Artist        string     `json:"artist"`
	SourcePackage string     `json:"source_package"`
	SourceType    SourceType `json:"source_type"`
	ArtworkURL    string     `json:"artwork_url,omitempty"`
}

// Valid reports whether both title and artist are non-blank.
func (p Payload) Valid() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Artist) != ""
}
