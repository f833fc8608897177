// Package parsing recovers structured fields from free posting text: the job
// title, seniority, degree requirements, salary and interview process.
package parsing

import (
	"regexp"
	"strings"
)

// Title patterns in priority order. Only the first pattern producing a
// usable title is used.
var titlePatterns = []*regexp.Regexp{
	// Position: Senior Backend Engineer
	regexp.MustCompile(`(?i)\b(?:job title|position|role|title)\s*:\s*([^\n|;]+)`),
	// We are hiring a Senior Backend Engineer to ...
	// Dots are allowed inside: Node.js Developer, Sr. Engineer.
	regexp.MustCompile(`(?i)\b(?:hiring|seeking|looking for)\s+(?:an?\s+)?([^\n,;:]+?)\s+(?:to|who|with)\b`),
	// Senior Backend Engineer - Acme Corp
	regexp.MustCompile(`^\s*([A-Z][A-Za-z0-9/&,+#.()' -]{9,59}?)(?:\s+[-–|]\s|\s*[:|]|[ \t]*\n)`),
}

// ExtractTitle returns the job title found in raw, or false when no pattern
// yields a title longer than 5 and shorter than 100 characters.
func ExtractTitle(raw string) (string, bool) {
	for _, pattern := range titlePatterns {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		title := strings.Join(strings.Fields(m[1]), " ")
		if n := len([]rune(title)); n > 5 && n < 100 {
			return title, true
		}
	}
	return "", false
}
