package utils

import (
	"slices"
	"strconv"
	"strings"
)

// DetermineLocale resolves the locale from an explicit query value, then the Accept-Language
// header (highest q first, ties in header order), then def. Region subtags fall back to their
// base language, so "zh-CN" matches "zh".
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := make(map[string]bool, len(supported))
	for _, s := range supported {
		sup[strings.ToLower(s)] = true
	}
	pick := func(lang string) (string, bool) {
		l := strings.ToLower(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if sup[l] {
			return l, true
		}
		if base, _, ok := strings.Cut(l, "-"); ok && sup[base] {
			return base, true
		}
		return "", false
	}

	if v, ok := pick(queryLang); ok {
		return v
	}

	type cand struct {
		lang string
		q    float64
	}
	var cands []cand
	for _, part := range strings.Split(acceptLang, ",") {
		lang, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		if k, v, ok := strings.Cut(params, "="); ok && strings.TrimSpace(k) == "q" {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			q = parsed
		}
		if q <= 0 {
			continue
		}
		if l, ok := pick(lang); ok {
			cands = append(cands, cand{lang: l, q: q})
		}
	}
	if len(cands) > 0 {
		slices.SortStableFunc(cands, func(a, b cand) int {
			switch {
			case a.q > b.q:
				return -1
			case a.q < b.q:
				return 1
			}
			return 0
		})
		return cands[0].lang
	}
	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}
