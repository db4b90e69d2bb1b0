package search

import (
	"html"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AddressKind selects the highlight colour.
type AddressKind int

const (
	KindRoad AddressKind = iota
	KindLandLot
)

func ParseAddressKind(s string) AddressKind {
	if s == "landLot" {
		return KindLandLot
	}
	return KindRoad
}

const (
	roadColor    = "#FFFF00"
	landLotColor = "#90EE90"
	markStyle    = "font-weight: bold; padding: 1px 2px; border-radius: 2px;"
)

type span struct{ start, end int }

// Highlight wraps every case-insensitive occurrence of any expanded query
// term in a <mark> element. Matches of different synonyms are merged before
// any markup is written, so markers never nest. The rest of the text is
// HTML-escaped. Text that is not valid UTF-8 is returned escaped without
// markup so its bytes survive unchanged.
func Highlight(text, query string, kind AddressKind) string {
	if text == "" || strings.TrimSpace(query) == "" || !utf8.ValidString(text) {
		return html.EscapeString(text)
	}

	runes := []rune(text)
	folded := foldRunes(runes)

	var spans []span
	for _, term := range ExpandQuery(query) {
		t := foldRunes([]rune(term))
		if len(t) == 0 {
			continue
		}
		for i := 0; i+len(t) <= len(folded); {
			if slices.Equal(folded[i:i+len(t)], t) {
				spans = append(spans, span{i, i + len(t)})
				i += len(t)
				continue
			}
			i++
		}
	}
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	spans = mergeSpans(spans)

	color := roadColor
	if kind == KindLandLot {
		color = landLotColor
	}
	open := `<mark style="background-color: ` + color + "; " + markStyle + `">`

	var b strings.Builder
	pos := 0
	for _, s := range spans {
		b.WriteString(html.EscapeString(string(runes[pos:s.start])))
		b.WriteString(open)
		b.WriteString(html.EscapeString(string(runes[s.start:s.end])))
		b.WriteString("</mark>")
		pos = s.end
	}
	b.WriteString(html.EscapeString(string(runes[pos:])))
	return b.String()
}

// mergeSpans sorts spans and joins the ones that overlap.
func mergeSpans(spans []span) []span {
	slices.SortFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return b.end - a.end
	})

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start < last.end {
			last.end = max(last.end, s.end)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}
