package api

import (
	"nowplaying/internal/events"
	"nowplaying/internal/lyrics"
	"nowplaying/internal/memory"
	"nowplaying/internal/musicmeta"
	"nowplaying/internal/preflight"
	"nowplaying/internal/signal"
)

// FromPayload converts a resolved payload to its API representation.
func FromPayload(p signal.Payload) Payload {
	return Payload{
		Title:         p.Title,
		Artist:        p.Artist,
		SourcePackage: p.SourcePackage,
		SourceType:    string(p.SourceType),
		ArtworkURL:    p.ArtworkURL,
	}
}

// OptionalPayload returns nil unless ok is set.
func OptionalPayload(p signal.Payload, ok bool) *Payload {
	if !ok {
		return nil
	}
	dto := FromPayload(p)
	return &dto
}

// ToPayload converts an API payload back to the internal model.
func ToPayload(p Payload) signal.Payload {
	return signal.Payload{
		Title:         p.Title,
		Artist:        p.Artist,
		SourcePackage: p.SourcePackage,
		SourceType:    signal.ParseSourceType(p.SourceType),
		ArtworkURL:    p.ArtworkURL,
	}
}

// ToSignal converts a posted notification to the internal model.
func ToSignal(s Signal) signal.Signal {
	sig := signal.Signal{
		Key:                     s.Key,
		SourcePackage:           s.SourcePackage,
		Title:                   s.Title,
		BigTitle:                s.BigTitle,
		Text:                    s.Text,
		SubText:                 s.SubText,
		BigText:                 s.BigText,
		IsKnownNativeSource:     s.KnownNative,
		IsTransportNotification: s.Transport,
		HasMediaSession:         s.MediaSession,
		IsOngoing:               s.Ongoing,
		IsPlaying:               s.Playing,
		ArtworkURL:              s.ArtworkURL,
	}
	if m := s.Media; m != nil {
		sig.Media = signal.MediaMetadata{
			Title:        m.Title,
			DisplayTitle: m.DisplayTitle,
			Artist:       m.Artist,
			AlbumArtist:  m.AlbumArtist,
			Author:       m.Author,
			Writer:       m.Writer,
			Composer:     m.Composer,
			Subtitle:     m.Subtitle,
			ArtURI:       m.ArtURI,
		}
	}
	return sig
}

// ToSignals converts a batch of posted notifications.
func ToSignals(in []Signal) []signal.Signal {
	out := make([]signal.Signal, 0, len(in))
	for _, s := range in {
		out = append(out, ToSignal(s))
	}
	return out
}

// FromEvents converts hub events to their API representation.
func FromEvents(in []events.Event) []Event {
	if len(in) == 0 {
		return nil
	}
	out := make([]Event, 0, len(in))
	for _, evt := range in {
		dto := Event{
			Sequence:  evt.Sequence,
			Timestamp: evt.Timestamp.UTC().Format(dateTimeFormat),
			Cleared:   evt.Cleared,
		}
		if evt.Payload != nil {
			p := FromPayload(*evt.Payload)
			dto.Payload = &p
		}
		out = append(out, dto)
	}
	return out
}

// FromLyricsResult converts a cascade outcome.
func FromLyricsResult(r lyrics.Result) LyricsResponse {
	resp := LyricsResponse{
		Status: string(r.Status),
		Lyrics: r.Lyrics,
		Trace:  r.Trace,
	}
	if r.Metadata != nil {
		m := r.Metadata
		resp.Metadata = &LyricsMetadata{
			TrackName:    m.TrackName,
			ArtistName:   m.ArtistName,
			AlbumName:    m.AlbumName,
			Duration:     m.Duration,
			Instrumental: m.Instrumental,
			Year:         m.Year,
			Synced:       m.Synced,
		}
	}
	return resp
}

// FromCandidates converts search candidates, preserving order.
func FromCandidates(in []lyrics.Candidate) []LyricsCandidate {
	out := make([]LyricsCandidate, 0, len(in))
	for _, c := range in {
		out = append(out, LyricsCandidate{
			TrackName:  c.TrackName,
			ArtistName: c.ArtistName,
			AlbumName:  c.AlbumName,
			Lyrics:     c.Lyrics,
		})
	}
	return out
}

// FromArtists converts the learned artist table.
func FromArtists(in []memory.Artist) []Artist {
	out := make([]Artist, 0, len(in))
	for _, a := range in {
		dto := Artist{
			Name:        a.Name,
			DisplayName: a.DisplayName,
			Confidence:  a.Confidence,
			Occurrences: a.Occurrences,
		}
		if !a.UpdatedAt.IsZero() {
			dto.UpdatedAt = a.UpdatedAt.UTC().Format(dateTimeFormat)
		}
		out = append(out, dto)
	}
	return out
}

// FromInsight converts an artist profile.
func FromInsight(in musicmeta.Insight) ArtistInsight {
	releases := in.PopularReleases
	if releases == nil {
		releases = []string{}
	}
	return ArtistInsight{
		ArtistName:        in.ArtistName,
		PrimaryGenre:      in.PrimaryGenre,
		Country:           in.Country,
		ShortBio:          in.ShortBio,
		PopularReleases:   releases,
		FirstReleaseYear:  in.FirstReleaseYear,
		LatestReleaseYear: in.LatestReleaseYear,
	}
}

// FromCheckResults converts preflight outcomes.
func FromCheckResults(in []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(in))
	for _, r := range in {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}
