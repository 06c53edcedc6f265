package lyrics

import (
	"regexp"
	"strconv"

	"nowplaying/internal/services/lrclib"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// SelectLyrics picks the synced or plain lyrics field of rec, preferring
// synced when preferSynced is set and falling back to the other field. It
// reports whether the returned text is synced.
func SelectLyrics(rec lrclib.Record, preferSynced bool) (string, bool) {
	synced, hasSynced := rec.Text("syncedLyrics")
	plain, hasPlain := rec.Text("plainLyrics")
	switch {
	case preferSynced && hasSynced:
		return synced, true
	case preferSynced && hasPlain:
		return plain, false
	case hasPlain:
		return plain, false
	case hasSynced:
		return synced, true
	default:
		return "", false
	}
}

// ParseMetadata extracts descriptive fields from rec.
func ParseMetadata(rec lrclib.Record) Metadata {
	var md Metadata
	md.TrackName, _ = rec.Text("trackName")
	md.ArtistName, _ = rec.Text("artistName")
	md.AlbumName, _ = rec.Text("albumName")
	md.Duration, _ = rec.Float("duration")
	md.Instrumental, _ = rec.Bool("instrumental")
	md.Year = releaseYear(rec)
	return md
}

// releaseYear reads releaseYear, then year, else the first four-digit run of
// releaseDate.
func releaseYear(rec lrclib.Record) int {
	for _, key := range []string{"releaseYear", "year"} {
		if year, ok := rec.Int(key); ok && year > 0 {
			return year
		}
	}
	date, ok := rec.Text("releaseDate")
	if !ok {
		return 0
	}
	match := yearPattern.FindString(date)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}
