package search

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tier scores, highest first. Only the first matching tier applies.
const (
	scoreExact    = 100
	scorePrefix   = 80
	scoreContains = 60

	scoreWordExact    = 50
	scoreWordPrefix   = 35
	scoreWordContains = 25

	shortQueryBonus = 10
	shortQueryRunes = 2
)

const (
	roadWeight    = 1.0
	landLotWeight = 0.9
)

// ScoreAddress scores how well term matches address. Both are compared as
// given; callers lowercase them.
func ScoreAddress(address, term string, weight float64) int {
	if address == "" || term == "" {
		return 0
	}

	base := 0
	switch {
	case address == term:
		base = scoreExact
	case strings.HasPrefix(address, term):
		base = scorePrefix
	case strings.Contains(address, term):
		base = scoreContains
	default:
		for _, word := range splitWords(address) {
			switch {
			case word == term:
				base += scoreWordExact
			case strings.HasPrefix(word, term):
				base += scoreWordPrefix
			case strings.Contains(word, term):
				base += scoreWordContains
			}
		}
	}

	if base > 0 && utf8.RuneCountInString(term) <= shortQueryRunes {
		base += shortQueryBonus
	}

	return int(math.Floor(float64(base) * weight))
}

func splitWords(address string) []string {
	return strings.FieldsFunc(address, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == ','
	})
}

// ScoreRecord is the best score of any expanded query term against either
// address. Matching several synonyms does not add up.
func ScoreRecord[T Addressable](record T, query string) int {
	road := strings.ToLower(record.Road())
	landLot := strings.ToLower(record.LandLot())

	best := 0
	for _, term := range ExpandQuery(query) {
		if term == "" {
			continue
		}
		score := max(ScoreAddress(road, term, roadWeight), ScoreAddress(landLot, term, landLotWeight))
		if score > best {
			best = score
		}
	}
	return best
}

// MatchSource tells which address produced the match. Both fields are scored
// unweighted here.
func MatchSource[T Addressable](record T, query string) Match {
	road := strings.ToLower(record.Road())
	landLot := strings.ToLower(record.LandLot())

	maxRoad, maxLandLot := 0, 0
	for _, term := range ExpandQuery(query) {
		maxRoad = max(maxRoad, ScoreAddress(road, term, 1.0))
		maxLandLot = max(maxLandLot, ScoreAddress(landLot, term, 1.0))
	}

	switch {
	case maxRoad > maxLandLot:
		return MatchRoad
	case maxLandLot > maxRoad:
		return MatchLandLot
	case maxRoad > 0:
		return MatchBoth
	}
	return MatchNone
}
