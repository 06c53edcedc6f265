package identity

import (
	"strings"
	"unicode/utf8"

	"nowplaying/internal/memory"
	"nowplaying/internal/textutil"
)

const (
	leadingEnsembleBonus = 4
	ensembleTokenBonus   = 3
	multiTokenBonus      = 2
	longNameBonus        = 1
	longNameLength       = 10

	possessiveLeadPenalty = 6
	verbLeadPenalty       = 5
	longPossessivePenalty = 4
	longPossessiveTokens  = 4

	exactMemoryBoost     = 12
	substringMemoryBoost = 7
)

var ensembleWords = wordSet("el", "la", "los", "las", "grupo", "banda", "dj", "mc", "orquesta", "trio", "sonora")

var possessives = wordSet("mi", "tu", "su", "mis", "tus", "sus")

var leadingVerbs = wordSet(
	"quiero", "tengo", "busco", "siento", "necesito", "dime", "dame",
	"traigo", "ando", "vengo", "soy", "eres", "es", "somos",
)

var placeNames = wordSet(
	"leon", "mexico", "texas", "michoacan", "jalisco", "durango",
	"sinaloa", "sonora", "chihuahua", "tijuana", "juarez",
	"león", "méxico", "michoacán", "juárez",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}

// HeuristicScore rates how much candidate looks like an artist name using
// only its tokens.
func HeuristicScore(candidate string) int {
	return heuristicScore(textutil.Normalize(candidate), textutil.Tokenize(candidate))
}

func heuristicScore(normalized string, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	score := 0
	if inSet(ensembleWords, tokens[0]) {
		score += leadingEnsembleBonus
	}
	hasPossessive := false
	for _, token := range tokens {
		if inSet(ensembleWords, token) {
			score += ensembleTokenBonus
		}
		if inSet(possessives, token) {
			hasPossessive = true
		}
	}
	if len(tokens) >= 2 {
		score += multiTokenBonus
	}
	if utf8.RuneCountInString(normalized) >= longNameLength {
		score += longNameBonus
	}

	if inSet(possessives, tokens[0]) {
		score -= possessiveLeadPenalty
	}
	if inSet(leadingVerbs, tokens[0]) {
		score -= verbLeadPenalty
	}
	if len(tokens) > longPossessiveTokens && hasPossessive {
		score -= longPossessivePenalty
	}
	return score
}

// MemoryBoost sums the boost of every known artist matching candidate: an
// exact match adds 12, a substring match in either direction adds 7.
func MemoryBoost(candidate string, known []memory.Artist) int {
	key := textutil.Key(candidate)
	if key == "" {
		return 0
	}
	boost := 0
	for _, artist := range known {
		name := artist.Name
		if name == "" {
			continue
		}
		switch {
		case name == key:
			boost += exactMemoryBoost
		case strings.Contains(key, name) || strings.Contains(name, key):
			boost += substringMemoryBoost
		}
	}
	return boost
}

// Score is HeuristicScore plus MemoryBoost.
func Score(candidate string, known []memory.Artist) int {
	return HeuristicScore(candidate) + MemoryBoost(candidate, known)
}

// allPlaceNames reports whether every token is in the place gazetteer.
func allPlaceNames(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if !inSet(placeNames, token) {
			return false
		}
	}
	return true
}
