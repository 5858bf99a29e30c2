package source

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]{2,}`)
	emailRegex      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// locationPatterns maps lower-cased substrings to the canonical label reported
// for text-only sources. Checked in order; first hit wins.
var locationPatterns = []struct {
	pattern string
	label   string
}{
	{"worldwide", "Worldwide"},
	{"remote", "Remote"},
	{"hybrid", "Hybrid"},
	{"on-site", "On-site"},
	{"onsite", "On-site"},
	{"europe", "Europe"},
	{"united states", "USA"},
	{"usa", "USA"},
	{"uk", "UK"},
	{"canada", "Canada"},
}

// StripTags removes HTML/markup tags, decodes entities and collapses runs of
// spaces. Free text from every provider goes through this before storage.
func StripTags(s string) string {
	s = tagRegex.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CapDescription bounds a description so one verbose provider cannot bloat
// downstream payloads and storage.
func CapDescription(s string) string {
	return capBytes(s, maxDescription)
}

// capBytes cuts s to at most n bytes without splitting a rune — Postgres
// rejects invalid UTF-8, so a byte-boundary cut would make the whole listing
// unstorable.
func capBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ExtractEmail returns the first email-shaped token in the text, or "".
// Best effort — many postings have none.
func ExtractEmail(s string) string {
	return emailRegex.FindString(s)
}

// GuessLocation scans free text for a small fixed set of location keywords
// and returns the canonical label of the first hit, or "". Used by sources
// whose postings are untagged prose.
func GuessLocation(s string) string {
	lower := strings.ToLower(s)
	for _, p := range locationPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.label
		}
	}
	return ""
}
