package vocab

import (
	"cmp"
	"slices"
)

// LanguageCount is the number of entries studied in Lang.
type LanguageCount struct {
	Lang  string
	Count int
}

// CountByLanguage tallies entries per study language, largest first.
func CountByLanguage(entries []Entry) []LanguageCount {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.TargetLang]++
	}
	out := make([]LanguageCount, 0, len(counts))
	for lang, n := range counts {
		out = append(out, LanguageCount{Lang: lang, Count: n})
	}
	slices.SortFunc(out, func(a, b LanguageCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Lang, b.Lang)
	})
	return out
}
