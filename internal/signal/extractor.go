package signal

import (
	"context"
	"log/slog"
	"strings"

	"nowplaying/internal/config"
	"nowplaying/internal/identity"
	"nowplaying/internal/logging"
	"nowplaying/internal/textutil"
)

// Splitter parses one free-form line into a song and artist.
type Splitter interface {
	Split(ctx context.Context, raw string) (identity.ParsedIdentity, bool)
}

// Classify decides which extraction path a signal takes.
func Classify(sig Signal, nativePackages map[string]struct{}) SourceType {
	if sig.IsKnownNativeSource {
		return SourceNativeAssistant
	}
	if _, ok := nativePackages[strings.TrimSpace(sig.SourcePackage)]; ok {
		return SourceNativeAssistant
	}
	if sig.HasMediaSession && (sig.IsTransportNotification || sig.IsOngoing) {
		return SourceMediaPlayer
	}
	return SourceUnknown
}

// Extractor turns signals into payloads.
type Extractor struct {
	splitter          Splitter
	native            map[string]struct{}
	ignored           map[string]struct{}
	unknownArtist     string
	allowUnclassified bool
	logger            *slog.Logger
}

// NewExtractor builds an Extractor from the extractor config section.
func NewExtractor(cfg config.Extractor, splitter Splitter, logger *slog.Logger) *Extractor {
	unknown := textutil.Normalize(cfg.UnknownArtist)
	if unknown == "" {
		unknown = config.DefaultUnknownArtist
	}
	return &Extractor{
		splitter:          splitter,
		native:            packageSet(cfg.NativePackages),
		ignored:           packageSet(cfg.IgnoredPackages),
		unknownArtist:     unknown,
		allowUnclassified: cfg.AllowUnclassified,
		logger:            logging.NewComponentLogger(logger, "extractor"),
	}
}

func packageSet(packages []string) map[string]struct{} {
	set := make(map[string]struct{}, len(packages))
	for _, pkg := range packages {
		if pkg = strings.TrimSpace(pkg); pkg != "" {
			set[pkg] = struct{}{}
		}
	}
	return set
}

// Classify applies the extractor's native allow-list to sig.
func (e *Extractor) Classify(sig Signal) SourceType {
	return Classify(sig, e.native)
}

// Extract resolves sig into a payload. It returns false when the signal is
// ignored, is not a now-playing source, belongs to a paused media session,
// or carries no usable title.
func (e *Extractor) Extract(ctx context.Context, sig Signal) (Payload, bool) {
	pkg := strings.TrimSpace(sig.SourcePackage)
	if _, ok := e.ignored[pkg]; ok {
		e.logger.Debug("ignoring notification from ignored package", logging.String(logging.FieldSourcePackage, pkg))
		return Payload{}, false
	}

	sourceType := e.Classify(sig)
	logger := e.logger.With(
		logging.String(logging.FieldSourcePackage, pkg),
		logging.String(logging.FieldSourceType, string(sourceType)))

	if sourceType == SourceUnknown && !e.allowUnclassified {
		logger.Debug("ignoring unclassified notification")
		return Payload{}, false
	}
	if sourceType == SourceMediaPlayer && !sig.IsPlaying {
		logger.Debug("ignoring media session that is not playing")
		return Payload{}, false
	}

	payload := Payload{
		SourcePackage: pkg,
		SourceType:    sourceType,
		ArtworkURL:    artworkURL(sig),
	}

	titleFields := []string{sig.Title, sig.BigTitle}
	artistFields := []string{sig.Text, sig.SubText}
	if sourceType == SourceMediaPlayer {
		titleFields = mediaTitleFields(sig)
		artistFields = mediaArtistFields(sig)
	}

	if title, artist, ok := direct(titleFields, artistFields); ok {
		payload.Title, payload.Artist = title, artist
		logger.Debug("extracted fields directly", logging.String("title", title), logging.String("artist", artist))
		return payload, true
	}

	if e.splitter != nil {
		for _, candidate := range []string{sig.BigTitle, sig.Title, sig.SubText, sig.Text} {
			if strings.TrimSpace(candidate) == "" {
				continue
			}
			parsed, ok := e.splitter.Split(ctx, candidate)
			if !ok {
				continue
			}
			payload.Title, payload.Artist = parsed.SongTitle, parsed.ArtistName
			logger.Debug("extracted via splitter",
				logging.String(logging.FieldStrategy, string(parsed.Strategy)),
				logging.String("title", payload.Title),
				logging.String("artist", payload.Artist))
			return payload, true
		}
	}

	title, ok := firstClean(titleFields...)
	if !ok {
		logger.Debug("discarded notification without usable title")
		return Payload{}, false
	}
	payload.Title, payload.Artist = title, e.unknownArtist
	logger.Debug("fell back to raw title", logging.String("title", title))
	return payload, true
}

// mediaTitleFields lists title candidates of a media player notification,
// session metadata first.
func mediaTitleFields(sig Signal) []string {
	return []string{sig.Media.Title, sig.Media.DisplayTitle, sig.BigTitle, sig.Title}
}

// mediaArtistFields lists artist candidates of a media player notification.
// The expanded big text is the last resort.
func mediaArtistFields(sig Signal) []string {
	md := sig.Media
	return []string{
		md.Artist, md.AlbumArtist, md.Author, md.Writer, md.Composer, md.Subtitle,
		sig.Text, sig.SubText, sig.BigText,
	}
}

// artworkURL prefers the session's art URI over the notification's artwork.
func artworkURL(sig Signal) string {
	if uri := strings.TrimSpace(sig.Media.ArtURI); uri != "" {
		return uri
	}
	return strings.TrimSpace(sig.ArtworkURL)
}

// clean normalizes a field and reports whether it is usable.
func clean(field string) (string, bool) {
	value := textutil.TrimQuotes(field)
	if value == "" || IsHelper(value) {
		return "", false
	}
	return value, true
}

func firstClean(fields ...string) (string, bool) {
	for _, field := range fields {
		if value, ok := clean(field); ok {
			return value, true
		}
	}
	return "", false
}

// direct pairs the first clean title with the first clean artist field that
// does not repeat it.
func direct(titleFields, artistFields []string) (string, string, bool) {
	title, ok := firstClean(titleFields...)
	if !ok {
		return "", "", false
	}
	for _, field := range artistFields {
		artist, ok := clean(field)
		if !ok || textutil.Key(artist) == textutil.Key(title) {
			continue
		}
		return title, artist, true
	}
	return "", "", false
}

// IsHelper reports whether text is assistant boilerplate.
func IsHelper(text string) bool {
	return identity.IsHelperText(text)
}
