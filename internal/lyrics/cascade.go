package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"nowplaying/internal/logging"
	"nowplaying/internal/services/lrclib"
	"nowplaying/internal/textutil"
)

const defaultSearchLimit = 10

// Cascade is the Provider backed by a lyrics Source.
type Cascade struct {
	source      Source
	logger      *slog.Logger
	searchLimit int
	newTraceID  func() string
}

// Option customizes a Cascade.
type Option func(*Cascade)

// WithLogger sets the cascade logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cascade) {
		c.logger = logging.NewComponentLogger(logger, "lyrics")
	}
}

// WithSearchLimit caps the number of search candidates returned.
func WithSearchLimit(limit int) Option {
	return func(c *Cascade) {
		if limit > 0 {
			c.searchLimit = limit
		}
	}
}

// WithTraceIDs overrides trace id generation (useful for tests).
func WithTraceIDs(gen func() string) Option {
	return func(c *Cascade) {
		if gen != nil {
			c.newTraceID = gen
		}
	}
}

// NewCascade constructs a Cascade over source.
func NewCascade(source Source, opts ...Option) *Cascade {
	c := &Cascade{
		source:      source,
		logger:      logging.NewComponentLogger(nil, "lyrics"),
		searchLimit: defaultSearchLimit,
		newTraceID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type attempt struct {
	name string
	run  func(ctx context.Context) (lrclib.Record, error)
}

// Resolve runs the lookup cascade for title and artist.
func (c *Cascade) Resolve(ctx context.Context, title, artist string, preferSynced bool) (result Result) {
	title = textutil.Normalize(title)
	artist = textutil.Normalize(artist)
	traceID := c.newTraceID()
	logger := c.logger.With(logging.String(logging.FieldCorrelationID, traceID))
	result = Result{
		Status: StatusNotFound,
		Lyrics: NotFoundMessage,
		Trace:  []string{fmt.Sprintf("trace %s: title=%q artist=%q synced=%t", traceID, title, artist, preferSynced)},
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("lyrics lookup panicked", logging.Any("panic", r))
			result.Status = StatusUnavailable
			result.Lyrics = UnavailableMessage
			result.Metadata = nil
			result.Trace = append(result.Trace, fmt.Sprintf("unavailable: %v", r))
		}
	}()

	if title == "" || artist == "" {
		result.Trace = append(result.Trace, "skipped: title and artist are required")
		return result
	}
	if c.source == nil {
		result.Status = StatusUnavailable
		result.Lyrics = UnavailableMessage
		result.Trace = append(result.Trace, "unavailable: no lyrics source configured")
		return result
	}

	attempts := []attempt{
		{name: "get", run: func(ctx context.Context) (lrclib.Record, error) {
			return c.source.Get(ctx, title, artist)
		}},
		{name: "search", run: func(ctx context.Context) (lrclib.Record, error) {
			return first(c.source.Search(ctx, title, artist))
		}},
		{name: "query", run: func(ctx context.Context) (lrclib.Record, error) {
			return first(c.source.Query(ctx, title+" "+artist))
		}},
	}

	for _, step := range attempts {
		rec, err := step.run(ctx)
		if err != nil {
			result.Trace = append(result.Trace, fmt.Sprintf("%s: %s", step.name, describe(err)))
			logger.Debug("lyrics attempt failed", logging.String("attempt", step.name), logging.Error(err))
			continue
		}
		text, synced := SelectLyrics(rec, preferSynced)
		if text == "" {
			result.Trace = append(result.Trace, fmt.Sprintf("%s: entry without lyrics", step.name))
			continue
		}
		md := ParseMetadata(rec)
		md.Synced = synced
		result.Status = StatusFound
		result.Lyrics = text
		result.Metadata = &md
		result.Trace = append(result.Trace, fmt.Sprintf("%s: found (synced=%t)", step.name, synced))
		logger.Info("lyrics resolved",
			logging.String(logging.FieldEventType, "lyrics_resolved"),
			logging.String("attempt", step.name),
			logging.Bool("synced", synced))
		return result
	}

	result.Trace = append(result.Trace, "not found")
	logger.Info("lyrics not found",
		logging.String(logging.FieldEventType, "lyrics_not_found"),
		logging.String("title", title),
		logging.String("artist", artist))
	return result
}

// SearchCandidates runs a free-text search and returns up to the configured
// limit of hits, stably ordered by edit distance to query. Hits without a
// track, an artist or any lyrics are dropped; synced lyrics win over plain.
func (c *Cascade) SearchCandidates(ctx context.Context, query string) (out []Candidate) {
	query = textutil.Normalize(query)
	if query == "" || c.source == nil {
		return []Candidate{}
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("lyrics search panicked", logging.Any("panic", r))
			out = []Candidate{}
		}
	}()

	records, err := c.source.Query(ctx, query)
	if err != nil {
		logging.WarnWithContext(c.logger, "lyrics search failed", "lyrics_search_failed",
			logging.Error(err),
			logging.String("query", query),
			logging.String(logging.FieldImpact, "no search candidates returned"))
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		md := ParseMetadata(rec)
		text, _ := SelectLyrics(rec, true)
		if md.TrackName == "" || md.ArtistName == "" || text == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			TrackName:  md.TrackName,
			ArtistName: md.ArtistName,
			AlbumName:  md.AlbumName,
			Lyrics:     text,
		})
	}
	rankCandidates(query, candidates)
	if len(candidates) > c.searchLimit {
		candidates = candidates[:c.searchLimit]
	}
	return candidates
}

func rankCandidates(query string, candidates []Candidate) {
	key := textutil.Key(query)
	type ranked struct {
		cand     Candidate
		distance int
	}
	items := make([]ranked, len(candidates))
	for i, cand := range candidates {
		items[i] = ranked{cand: cand, distance: levenshtein.ComputeDistance(key, textutil.Key(cand.TrackName+" "+cand.ArtistName))}
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].distance < items[b].distance
	})
	for i := range items {
		candidates[i] = items[i].cand
	}
}

func first(records []lrclib.Record, err error) (lrclib.Record, error) {
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, lrclib.ErrNotFound
	}
	return records[0], nil
}

func describe(err error) string {
	if errors.Is(err, lrclib.ErrNotFound) {
		return "not found"
	}
	return strings.TrimSpace(err.Error())
}
