package musicmeta

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"nowplaying/internal/logging"
	"nowplaying/internal/services"
	"nowplaying/internal/services/itunes"
	"nowplaying/internal/textutil"
)

const (
	catalogSampleSize = 12
	popularReleases   = 5
)

// Catalog is the music catalogue searched for artwork and artist profiles.
type Catalog interface {
	SearchSongs(ctx context.Context, term string, limit int) ([]itunes.Result, error)
	SearchArtistSongs(ctx context.Context, artist string, limit int) ([]itunes.Result, error)
	SearchArtists(ctx context.Context, artist string, limit int) ([]itunes.Result, error)
}

// Encyclopedia supplies a short biography for an artist.
type Encyclopedia interface {
	ArtistSummary(ctx context.Context, term string) (string, error)
}

// Insight is the artist profile assembled from the catalogue and the
// encyclopedia.
type Insight struct {
	ArtistName        string   `json:"artist_name"`
	PrimaryGenre      string   `json:"primary_genre,omitempty"`
	Country           string   `json:"country,omitempty"`
	ShortBio          string   `json:"short_bio,omitempty"`
	PopularReleases   []string `json:"popular_releases,omitempty"`
	FirstReleaseYear  int      `json:"first_release_year,omitempty"`
	LatestReleaseYear int      `json:"latest_release_year,omitempty"`
}

// Provider answers artwork and artist insight lookups.
type Provider struct {
	catalog      Catalog
	encyclopedia Encyclopedia
	logger       *slog.Logger
}

// New constructs a Provider. Either source may be nil; its fields then stay
// empty.
func New(catalog Catalog, encyclopedia Encyclopedia, logger *slog.Logger) *Provider {
	return &Provider{
		catalog:      catalog,
		encyclopedia: encyclopedia,
		logger:       logging.NewComponentLogger(logger, "musicmeta"),
	}
}

// ArtworkURL returns a 600px cover for the best catalogue match of title and
// artist.
func (p *Provider) ArtworkURL(ctx context.Context, title, artist string) (string, bool) {
	term := textutil.Normalize(title + " " + artist)
	if term == "" || p.catalog == nil {
		return "", false
	}
	results, err := p.catalog.SearchSongs(ctx, term, 1)
	if err != nil {
		p.lookupFailed("artwork", term, err)
		return "", false
	}
	if len(results) == 0 {
		return "", false
	}
	artwork := itunes.LargeArtwork(results[0].ArtworkURL100)
	return artwork, artwork != ""
}

// ArtistInsight builds the profile of artist. The name falls back to the
// query when the catalogue has no artist entry.
func (p *Provider) ArtistInsight(ctx context.Context, artist string) (Insight, bool) {
	query := textutil.Normalize(artist)
	if query == "" {
		return Insight{}, false
	}
	insight := Insight{ArtistName: query}

	if p.catalog != nil {
		p.fillProfile(ctx, query, &insight)
		p.fillReleases(ctx, query, &insight)
	}
	if p.encyclopedia != nil {
		bio, err := p.encyclopedia.ArtistSummary(ctx, query)
		if err != nil {
			p.lookupFailed("biography", query, err)
		} else {
			insight.ShortBio = strings.TrimSpace(bio)
		}
	}
	return insight, true
}

func (p *Provider) fillProfile(ctx context.Context, query string, insight *Insight) {
	results, err := p.catalog.SearchArtists(ctx, query, 1)
	if err != nil {
		p.lookupFailed("artist profile", query, err)
		return
	}
	if len(results) == 0 {
		return
	}
	first := results[0]
	if name := strings.TrimSpace(first.ArtistName); name != "" {
		insight.ArtistName = name
	}
	insight.PrimaryGenre = strings.TrimSpace(first.PrimaryGenreName)
	insight.Country = strings.TrimSpace(first.Country)
}

func (p *Provider) fillReleases(ctx context.Context, query string, insight *Insight) {
	results, err := p.catalog.SearchArtistSongs(ctx, query, catalogSampleSize)
	if err != nil {
		p.lookupFailed("artist releases", query, err)
		return
	}
	seen := make(map[string]struct{}, len(results))
	for _, item := range results {
		if track := strings.TrimSpace(item.TrackName); track != "" {
			key := textutil.Key(track)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				if len(insight.PopularReleases) < popularReleases {
					insight.PopularReleases = append(insight.PopularReleases, track)
				}
			}
		}
		year, ok := leadingYear(item.ReleaseDate)
		if !ok {
			continue
		}
		if insight.FirstReleaseYear == 0 || year < insight.FirstReleaseYear {
			insight.FirstReleaseYear = year
		}
		if year > insight.LatestReleaseYear {
			insight.LatestReleaseYear = year
		}
	}
}

// leadingYear parses the year prefix of an ISO release date.
func leadingYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

func (p *Provider) lookupFailed(what, query string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		p.logger.Debug("metadata lookup found nothing", logging.String("lookup", what), logging.String("query", query))
		return
	}
	logging.WarnWithContext(p.logger, "metadata lookup failed", "metadata_lookup_failed",
		logging.Error(err),
		logging.String("lookup", what),
		logging.String("query", query),
		logging.String(logging.FieldErrorHint, "check the [metadata] service URLs and network access"),
		logging.String(logging.FieldImpact, what+" left empty"))
}
