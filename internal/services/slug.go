package services

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeID turns a raw identifier into a slug. The result may be empty; callers treat that as invalid.
func NormalizeID(raw string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
	return strings.Trim(s, "-")
}

// NormalizeIDParam normalizes a path or query parameter. ok is false when nothing usable remains.
func NormalizeIDParam(raw string) (id string, ok bool) {
	id = NormalizeID(raw)
	return id, id != ""
}
