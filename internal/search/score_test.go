package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	road, landLot string
}

func (r record) Road() string    { return r.road }
func (r record) LandLot() string { return r.landLot }

func TestScoreAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		term    string
		weight  float64
		want    int
	}{
		{"exact", "강남구", "강남구", 1.0, 100},
		{"exact short", "강남", "강남", 1.0, 110},
		{"prefix", "강남구 역삼동", "강남구", 1.0, 80},
		{"prefix short", "강남구 역삼동", "강남", 1.0, 90},
		{"contains short", "서울시 강남구", "강남", 1.0, 70},
		{"contains", "서울시 강남구 역삼동", "역삼동", 1.0, 60},
		{"no match", "서울시 강남구", "부산", 1.0, 0},
		{"weighted floor", "서울시 강남구", "강남", 0.9, 63},
		{"weighted exact", "경기도", "경기도", 0.9, 90},
		{"empty address", "", "강남", 1.0, 0},
		{"empty term", "강남구", "", 1.0, 0},
		{"single rune", "abc", "b", 1.0, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreAddress(tt.address, tt.term, tt.weight))
		})
	}
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"서울시", "강남구", "테헤란로", "1", "2"}, splitWords("서울시 강남구,테헤란로  1-2"))
	assert.Empty(t, splitWords(" - , "))
}

func TestScoreRecord(t *testing.T) {
	tests := []struct {
		name  string
		rec   record
		query string
		want  int
	}{
		{"road contains", record{road: "서울시 강남구 테헤란로"}, "강남", 70},
		{"land lot weighted", record{landLot: "서울시 강남구 역삼동"}, "강남", 63},
		{"best of both fields", record{road: "서울시 강남구", landLot: "강남구 역삼동"}, "강남", 81},
		{"case insensitive", record{road: "Gangnam-daero 1"}, "GANGNAM", 80},
		{"synonym prefix", record{road: "강원특별자치도 춘천시 중앙로 1"}, "강원", 90},
		{"synonyms do not add up", record{road: "강원도 춘천시"}, "강원", 90},
		{"synonym from long form", record{landLot: "강원 원주시"}, "강원특별자치도", 81},
		{"no match", record{road: "부산광역시 해운대구"}, "강남", 0},
		{"empty record", record{}, "강남", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreRecord(tt.rec, tt.query))
		})
	}
}

func TestMatchSource(t *testing.T) {
	rec := record{road: "서울시 강남구 테헤란로", landLot: "서울시 강남구 역삼동 1"}

	assert.Equal(t, MatchBoth, MatchSource(rec, "강남"))
	assert.Equal(t, MatchLandLot, MatchSource(rec, "역삼"))
	assert.Equal(t, MatchRoad, MatchSource(rec, "테헤란"))
	assert.Equal(t, MatchNone, MatchSource(rec, "부산"))
	assert.Equal(t, MatchRoad, MatchSource(record{road: "강남구"}, "강남"))
}
