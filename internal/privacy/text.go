// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package privacy

import (
	"regexp"
)

// MaxTextLength bounds the input SanitizeText scans, in runes
const MaxTextLength = 10000

const (
	EmailPlaceholder  = "[email]"
	PhonePlaceholder  = "[phone]"
	URLPlaceholder    = "[url]"
	PersonPlaceholder = "[person]"
)

var (
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	urlRegex   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)
	phoneRegex = regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?(?:\(\d{2,4}\)|\b\d{2,4})[\s.-]?\d{3,4}[\s.-]?\d{3,4}\b`)

	// the object is an optional title and one word, extended by any
	// capitalized words that follow. Longer phrases come first.
	relationRegex = regexp.MustCompile(
		`\b((?i:met up with|met with|met|talked to|spoke with|worked with|learned from|collaborated with|chatted with))\s+` +
			`(?:(?i:dr|mrs|mr|ms|mx|prof)\.?\s+)?\p{L}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)*`,
	)

	// order matters: e-mail addresses and URLs contain digit runs
	replacements = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{emailRegex, EmailPlaceholder},
		{urlRegex, URLPlaceholder},
		{phoneRegex, PhonePlaceholder},
	}
)

// SanitizeText truncates text to MaxTextLength runes, then replaces
// e-mail addresses, URLs and phone numbers with placeholders and the person
// following a relational phrase such as "met" or "talked to" with [person].
func SanitizeText(text string) string {
	if text == "" {
		return text
	}

	result := truncateRunes(text, MaxTextLength)
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return relationRegex.ReplaceAllString(result, "${1} "+PersonPlaceholder)
}

func truncateRunes(s string, max int) string {
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
