// Package search ranks addressed records against a free-text query with
// province synonym expansion.
package search

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// MaxResults caps the number of records Search returns.
const MaxResults = 15

// NoAddressLabel is shown when a record has neither address.
const NoAddressLabel = "주소 정보 없음"

// Addressable is a record with a road-name address and a land-lot (jibun)
// address. Either may be empty.
type Addressable interface {
	Road() string
	LandLot() string
}

// Match names the address field that produced a hit.
type Match string

const (
	MatchRoad    Match = "roadAddress"
	MatchLandLot Match = "landLotAddress"
	MatchBoth    Match = "both"
	MatchNone    Match = "none"
)

type Result[T Addressable] struct {
	Item        T     `json:"item"`
	SearchScore int   `json:"searchScore"`
	MatchedBy   Match `json:"matchedBy"`
}

type Stats struct {
	Total                 int `json:"total"`
	RoadAddressMatches    int `json:"roadAddressMatches"`
	LandLotAddressMatches int `json:"landLotAddressMatches"`
	BothMatches           int `json:"bothMatches"`
}

// Engine holds the search state of one consumer: the current query, its
// results and whether search mode is on. It is not safe for concurrent use.
type Engine[T Addressable] struct {
	logger     zerolog.Logger
	query      string
	results    []Result[T]
	searchMode bool
}

func NewEngine[T Addressable](logger zerolog.Logger) *Engine[T] {
	return &Engine[T]{logger: logger.With().Str("component", "search").Logger()}
}

// Search scores every record, drops non-matches and returns at most
// MaxResults by descending score. On equal scores records with a road
// address come first; otherwise input order is kept. A blank query clears
// search mode and returns nothing.
func (e *Engine[T]) Search(records []T, query string) []Result[T] {
	trimmed := strings.TrimSpace(query)
	e.query = query

	if trimmed == "" {
		e.results = nil
		e.searchMode = false
		return nil
	}
	e.searchMode = true

	results := Rank(records, trimmed)
	e.results = results

	ev := e.logger.Info().
		Str("query", trimmed).
		Strs("expanded", ExpandQuery(trimmed)).
		Int("results", len(results))
	if len(results) > 0 {
		s := statsOf(results)
		ev = ev.Int("road", s.RoadAddressMatches).Int("land_lot", s.LandLotAddressMatches).Int("both", s.BothMatches)
	}
	ev.Msg("search completed")

	return results
}

// Rank is Search without engine state.
func Rank[T Addressable](records []T, query string) []Result[T] {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	scored := make([]Result[T], 0, len(records))
	for _, r := range records {
		score := ScoreRecord(r, query)
		if score <= 0 {
			continue
		}
		scored = append(scored, Result[T]{
			Item:        r,
			SearchScore: score,
			MatchedBy:   MatchSource(r, query),
		})
	}

	slices.SortStableFunc(scored, func(a, b Result[T]) int {
		if a.SearchScore != b.SearchScore {
			return b.SearchScore - a.SearchScore
		}
		return hasRoad(b.Item) - hasRoad(a.Item)
	})

	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}
	return scored
}

func hasRoad[T Addressable](r T) int {
	if r.Road() != "" {
		return 1
	}
	return 0
}

func (e *Engine[T]) Query() string { return e.query }

// Results returns the results of the last search.
func (e *Engine[T]) Results() []Result[T] { return e.results }

func (e *Engine[T]) SearchMode() bool { return e.searchMode }

// Stats summarizes the last results by match source. ok is false outside
// search mode.
func (e *Engine[T]) Stats() (Stats, bool) {
	if !e.searchMode {
		return Stats{}, false
	}
	return statsOf(e.results), true
}

func (e *Engine[T]) Clear() {
	e.query = ""
	e.results = nil
	e.searchMode = false
	e.logger.Debug().Msg("search cleared")
}

// HighlightCurrent highlights text with the engine's current query.
func (e *Engine[T]) HighlightCurrent(text string, kind AddressKind) string {
	return Highlight(text, e.query, kind)
}

func statsOf[T Addressable](results []Result[T]) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		switch r.MatchedBy {
		case MatchRoad:
			s.RoadAddressMatches++
		case MatchLandLot:
			s.LandLotAddressMatches++
		case MatchBoth:
			s.BothMatches++
		}
	}
	return s
}

// DisplayAddress prefers the road address, then the land-lot address.
func DisplayAddress(r Addressable) string {
	if r.Road() != "" {
		return r.Road()
	}
	if r.LandLot() != "" {
		return r.LandLot()
	}
	return NoAddressLabel
}

// SecondaryAddress is the address not shown by DisplayAddress, when the
// record has both.
func SecondaryAddress(r Addressable) (string, bool) {
	if r.Road() == "" || r.LandLot() == "" {
		return "", false
	}
	return r.LandLot(), true
}
