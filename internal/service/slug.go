package service

import (
	"fmt"
	"strings"
	"unicode"
)

// slugify lowercases and collapses everything non-alphanumeric into
// single dashes.
func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "item"
	}
	return slug
}

// uniqueSlugWithSuffix appends a numeric discriminator so two rows
// named alike never collide.
func uniqueSlugWithSuffix(slug string, id uint) string {
	return fmt.Sprintf("%s-%d", slug, id)
}
