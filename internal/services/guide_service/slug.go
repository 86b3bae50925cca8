package services

import (
	"regexp"
	"strings"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// MakeSlug строит URL-безопасный слаг из произвольной строки.
// Например: "My First Guide!" -> "my-first-guide"
func MakeSlug(s string) string {
	base := strings.ToLower(strings.TrimSpace(s))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "guide"
	}
	return base
}

// ValidSlug проверяет, пригодна ли строка как custom URL
func ValidSlug(s string) bool {
	return validSlug.MatchString(s)
}
