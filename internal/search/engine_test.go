package search

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine[record] {
	return NewEngine[record](zerolog.Nop())
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := newTestEngine()
	records := []record{{road: "서울시 강남구"}, {landLot: "강남"}}

	e.Search(records, "강남")
	require.True(t, e.SearchMode())

	for _, q := range []string{"", "   ", "\t"} {
		assert.Empty(t, e.Search(records, q))
		assert.False(t, e.SearchMode())
		assert.Empty(t, e.Results())
	}
}

func TestSearch_RanksByScore(t *testing.T) {
	e := newTestEngine()
	records := []record{
		{road: "서울시 강남구 테헤란로"},  // contains: 70
		{road: "부산광역시 해운대구"},    // no match
		{road: "강남구 역삼동"},        // prefix: 90
		{landLot: "강남"},          // exact land lot: 99
	}

	got := e.Search(records, "강남")
	require.Len(t, got, 3)
	assert.Equal(t, []int{99, 90, 70}, []int{got[0].SearchScore, got[1].SearchScore, got[2].SearchScore})
	assert.Equal(t, MatchLandLot, got[0].MatchedBy)
	assert.Equal(t, MatchRoad, got[1].MatchedBy)
	for _, r := range got {
		assert.Greater(t, r.SearchScore, 0)
	}
}

func TestSearch_RoadAddressBreaksTies(t *testing.T) {
	e := newTestEngine()
	landOnly := record{landLot: "경기도"}       // 경기도 exact * 0.9 = 90
	withRoad := record{road: "경기 수원시 팔달구"} // 경기 prefix + short bonus = 90

	got := e.Search([]record{landOnly, withRoad}, "경기")
	require.Len(t, got, 2)
	assert.Equal(t, got[0].SearchScore, got[1].SearchScore)
	assert.Equal(t, withRoad, got[0].Item)
	assert.Equal(t, landOnly, got[1].Item)
}

func TestSearch_StableForEqualRecords(t *testing.T) {
	e := newTestEngine()
	records := []record{
		{road: "수원시 a", landLot: "1"},
		{road: "수원시 b", landLot: "2"},
		{road: "수원시 c", landLot: "3"},
	}
	got := e.Search(records, "수원시")
	require.Len(t, got, 3)
	for i := range records {
		assert.Equal(t, records[i], got[i].Item)
	}
}

func TestSearch_CapsResults(t *testing.T) {
	e := newTestEngine()
	records := make([]record, 40)
	for i := range records {
		records[i] = record{road: fmt.Sprintf("제주특별자치도 제주시 %d", i)}
	}

	got := e.Search(records, "제주")
	assert.Len(t, got, MaxResults)
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	records := []record{{road: "b 강남"}, {road: "강남 a"}}
	orig := append([]record(nil), records...)

	e.Search(records, "강남")
	assert.Equal(t, orig, records)
}

func TestEngine_StatsAndClear(t *testing.T) {
	e := newTestEngine()

	_, ok := e.Stats()
	assert.False(t, ok)

	e.Search([]record{
		{road: "서울시 강남구", landLot: "서울시 강남구 역삼동"},
		{road: "강남대로"},
		{landLot: "강남 1"},
	}, "강남")

	s, ok := e.Stats()
	require.True(t, ok)
	assert.Equal(t, Stats{Total: 3, RoadAddressMatches: 1, LandLotAddressMatches: 1, BothMatches: 1}, s)
	assert.Equal(t, "강남", e.Query())

	e.Clear()
	assert.False(t, e.SearchMode())
	assert.Empty(t, e.Query())
	assert.Empty(t, e.Results())
}

func TestRank_Stateless(t *testing.T) {
	assert.Nil(t, Rank([]record{{road: "a"}}, " "))
	got := Rank([]record{{road: "서울시 강남구"}}, "강남")
	require.Len(t, got, 1)
	assert.Equal(t, 70, got[0].SearchScore)
}

func TestDisplayAddress(t *testing.T) {
	assert.Equal(t, "도로", DisplayAddress(record{road: "도로", landLot: "지번"}))
	assert.Equal(t, "지번", DisplayAddress(record{landLot: "지번"}))
	assert.Equal(t, NoAddressLabel, DisplayAddress(record{}))

	s, ok := SecondaryAddress(record{road: "도로", landLot: "지번"})
	assert.True(t, ok)
	assert.Equal(t, "지번", s)

	_, ok = SecondaryAddress(record{road: "도로"})
	assert.False(t, ok)
}
