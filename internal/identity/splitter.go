package identity

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"nowplaying/internal/logging"
	"nowplaying/internal/memory"
	"nowplaying/internal/textutil"
)

// Memory is the subset of the artist store the splitter reads and teaches.
type Memory interface {
	LookupAll(ctx context.Context) ([]memory.Artist, error)
	Learn(ctx context.Context, name string, insertScore, incrementScore int) error
	InsertAliasIfMissing(ctx context.Context, alias string) (bool, error)
}

const (
	DefaultInsertScore    = 5
	DefaultIncrementScore = 2
)

var delimiters = []string{" • ", " - ", " — ", " – "}

var (
	byPattern     = regexp.MustCompile(`(?i)\sby\s`)
	quotedPattern = regexp.MustCompile(`["“”]([^"“”]+)["“”]\s+(?i:de|by)\s+["“”]([^"“”]+)["“”]`)
)

const (
	shortArtistTokens   = 2
	truncationMinTokens = 3
	truncationPenalty   = 4
	compoundNameBonus   = 2
	placeNamePenalty    = 6
)

// Splitter parses notification lines into song/artist pairs. Artists picked
// by the "de" heuristic are fed back into memory.
type Splitter struct {
	memory         Memory
	logger         *slog.Logger
	insertScore    int
	incrementScore int
	unknownArtist  string
}

// Option customizes a Splitter.
type Option func(*Splitter)

// WithLogger sets the logger used for memory warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		s.logger = logging.NewComponentLogger(logger, "identity")
	}
}

// WithScores overrides the learn scores applied to accepted artists.
func WithScores(insertScore, incrementScore int) Option {
	return func(s *Splitter) {
		if insertScore > 0 {
			s.insertScore = insertScore
		}
		if incrementScore > 0 {
			s.incrementScore = incrementScore
		}
	}
}

// WithUnknownArtist sets the sentinel artist label that is never learned.
func WithUnknownArtist(label string) Option {
	return func(s *Splitter) {
		s.unknownArtist = textutil.Key(label)
	}
}

// NewSplitter constructs a Splitter. A nil mem disables scoring boosts and
// learning.
func NewSplitter(mem Memory, opts ...Option) *Splitter {
	s := &Splitter{
		memory:         mem,
		logger:         logging.NewComponentLogger(nil, "identity"),
		insertScore:    DefaultInsertScore,
		incrementScore: DefaultIncrementScore,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Split returns the first identity any strategy extracts from raw, trying
// each line in order. Lines containing helper text are skipped. Typographic
// quotes are folded to ASCII before any strategy runs.
func (s *Splitter) Split(ctx context.Context, raw string) (ParsedIdentity, bool) {
	var known []memory.Artist
	loaded := false
	snapshot := func() []memory.Artist {
		if !loaded {
			known = s.lookupAll(ctx)
			loaded = true
		}
		return known
	}

	for _, line := range strings.Split(raw, "\n") {
		line = textutil.FoldQuotes(textutil.Normalize(line))
		if line == "" || IsHelperText(line) {
			continue
		}
		parsed, ok := splitDelimiter(line)
		if !ok {
			parsed, ok = splitBy(line)
		}
		if !ok {
			parsed, ok = splitQuoted(line)
		}
		if !ok {
			parsed, ok = splitDe(line, snapshot())
		}
		if !ok {
			continue
		}
		s.logger.Debug("split notification line",
			logging.String(logging.FieldStrategy, string(parsed.Strategy)),
			logging.String("song", parsed.SongTitle),
			logging.String("artist", parsed.ArtistName))
		if parsed.Strategy == StrategyDe {
			s.learn(ctx, parsed.ArtistName)
		}
		return parsed, true
	}
	return ParsedIdentity{}, false
}

func accept(song, artist string, strategy Strategy) (ParsedIdentity, bool) {
	song = textutil.TrimQuotes(song)
	artist = textutil.TrimQuotes(artist)
	if song == "" || artist == "" {
		return ParsedIdentity{}, false
	}
	return ParsedIdentity{SongTitle: song, ArtistName: artist, Strategy: strategy}, true
}

func splitDelimiter(line string) (ParsedIdentity, bool) {
	for _, sep := range delimiters {
		idx := strings.Index(line, sep)
		if idx < 0 {
			continue
		}
		if parsed, ok := accept(line[:idx], line[idx+len(sep):], StrategyDelimiter); ok {
			return parsed, true
		}
	}
	return ParsedIdentity{}, false
}

func splitBy(line string) (ParsedIdentity, bool) {
	matches := byPattern.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return ParsedIdentity{}, false
	}
	last := matches[len(matches)-1]
	return accept(line[:last[0]], line[last[1]:], StrategyBy)
}

func splitQuoted(line string) (ParsedIdentity, bool) {
	m := quotedPattern.FindStringSubmatch(line)
	if m == nil {
		return ParsedIdentity{}, false
	}
	return accept(m[1], m[2], StrategyQuoted)
}

// deIndexes returns the byte offsets of every case-insensitive " de " in line.
func deIndexes(line string) []int {
	var out []int
	for i := 0; i+4 <= len(line); i++ {
		if line[i] == ' ' && line[i+1]|0x20 == 'd' && line[i+2]|0x20 == 'e' && line[i+3] == ' ' {
			out = append(out, i)
		}
	}
	return out
}

func containsDe(text string) bool {
	return len(deIndexes(text)) > 0
}

// splitDe picks the " de " split point whose right half scores highest as an
// artist. Equal scores go to the rightmost split; when nothing scores above
// zero the last split point is used.
func splitDe(line string, known []memory.Artist) (ParsedIdentity, bool) {
	var (
		best       ParsedIdentity
		bestScore  int
		bestTokens int
		found      bool
		last       ParsedIdentity
		haveLast   bool
	)
	for _, idx := range deIndexes(line) {
		candidate, ok := accept(line[:idx], line[idx+4:], StrategyDe)
		if !ok {
			continue
		}
		last, haveLast = candidate, true

		artist := candidate.ArtistName
		tokens := textutil.Tokenize(artist)
		score := heuristicScore(artist, tokens) + MemoryBoost(artist, known)
		if found && len(tokens) <= shortArtistTokens && bestTokens >= truncationMinTokens {
			score -= truncationPenalty
		}
		if containsDe(artist) {
			score += compoundNameBonus
		}
		if len(tokens) <= shortArtistTokens && allPlaceNames(tokens) {
			score -= placeNamePenalty
		}

		if !found || score >= bestScore {
			best, bestScore, bestTokens, found = candidate, score, len(tokens), true
		}
	}
	if !haveLast {
		return ParsedIdentity{}, false
	}
	if bestScore <= 0 {
		return last, true
	}
	return best, true
}

func (s *Splitter) lookupAll(ctx context.Context) []memory.Artist {
	if s.memory == nil {
		return nil
	}
	known, err := s.memory.LookupAll(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "artist memory lookup failed", "memory_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the memory database path and permissions"),
			logging.String(logging.FieldImpact, "split scoring ran without learned artists"))
		return nil
	}
	return known
}

func (s *Splitter) learn(ctx context.Context, artist string) {
	if s.memory == nil {
		return
	}
	if s.unknownArtist != "" && textutil.Key(artist) == s.unknownArtist {
		return
	}
	if err := s.memory.Learn(ctx, artist, s.insertScore, s.incrementScore); err != nil {
		logging.WarnWithContext(s.logger, "artist memory learn failed", "memory_learn_failed",
			logging.Error(err),
			logging.String("artist", artist),
			logging.String(logging.FieldErrorHint, "check the memory database path and permissions"),
			logging.String(logging.FieldImpact, "artist was not reinforced"))
		return
	}
	for _, alias := range Aliases(artist) {
		if _, err := s.memory.InsertAliasIfMissing(ctx, alias); err != nil {
			logging.WarnWithContext(s.logger, "artist alias insert failed", "memory_alias_failed",
				logging.Error(err),
				logging.String("alias", alias),
				logging.String(logging.FieldImpact, "alias not seeded"))
			return
		}
	}
}
