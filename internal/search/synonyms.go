package search

import "strings"

// provinceGroups lists every accepted spelling of each provincial-level
// region. Every spelling is also a lookup key for its group.
var provinceGroups = [][]string{
	{"강원", "강원도", "강원특별자치도", "강원자치도"},
	{"경기", "경기도"},
	{"충북", "충청북도", "충북도"},
	{"충남", "충청남도", "충남도"},
	{"전북", "전라북도", "전북도", "전북특별자치도", "전북자치도"},
	{"전남", "전라남도", "전남도"},
	{"경북", "경상북도", "경북도"},
	{"경남", "경상남도", "경남도"},
	{"제주", "제주도", "제주특별자치도", "제주자치도"},
}

// SynonymTable maps a spelling to the ordered set of all its variants.
// It is read-only after construction.
type SynonymTable struct {
	groups map[string][]string
}

func NewSynonymTable(groups ...[]string) SynonymTable {
	t := SynonymTable{groups: make(map[string][]string)}
	for _, g := range groups {
		variants := make([]string, len(g))
		for i, v := range g {
			variants[i] = normalize(v)
		}
		for _, v := range variants {
			t.groups[v] = variants
		}
	}
	return t
}

// Provinces is the table of Korean provincial-level names.
var Provinces = NewSynonymTable(provinceGroups...)

// Lookup returns a copy of the variants for an already normalized term.
func (t SynonymTable) Lookup(term string) ([]string, bool) {
	g, ok := t.groups[term]
	if !ok {
		return nil, false
	}
	return append([]string(nil), g...), true
}

func (t SynonymTable) Len() int { return len(t.groups) }

// Expand normalizes query and returns its variants, or just the normalized
// query when it is not in the table.
func (t SynonymTable) Expand(query string) []string {
	q := normalize(query)
	if g, ok := t.Lookup(q); ok {
		return g
	}
	return []string{q}
}

// ExpandQuery expands query with the province table.
func ExpandQuery(query string) []string {
	return Provinces.Expand(query)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
