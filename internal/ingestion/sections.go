package ingestion

import (
	"regexp"
	"strings"
)

// Section headings recognised in postings, in report order.
var sectionHeadings = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"about", headingPattern(`about (?:us|the (?:role|team|company|position))`)},
	{"responsibilities", headingPattern(`(?:key )?responsibilities|what you(?:'ll| will) do`)},
	{"qualifications", headingPattern(`(?:minimum |preferred |basic )?qualifications`)},
	{"requirements", headingPattern(`requirements|what you(?:'ll)? need|must haves?`)},
	{"benefits", headingPattern(`benefits|perks|what we offer`)},
}

// headingPattern matches a heading on its own line or followed by ":" or "-".
func headingPattern(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t#*]*(?:` + alternatives + `)[ \t]*(?::|-|$)`)
}

// SplitSections reports which of the standard posting sections appear in raw
// text, in a fixed order.
func SplitSections(raw string) []string {
	sections := []string{}
	if strings.TrimSpace(raw) == "" {
		return sections
	}
	for _, h := range sectionHeadings {
		if h.pattern.MatchString(raw) {
			sections = append(sections, h.name)
		}
	}
	return sections
}
