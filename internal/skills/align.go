package skills

import (
	"strings"

	"github.com/jonathan/job-intel/internal/taxonomy"
)

// Align returns the share of explicit skills that appear in the resume,
// rounded to two decimals. Single-word skills must match a resume token
// exactly; multi-word skills must appear as a whole phrase. An empty skill
// list aligns to zero.
func Align(resume string, explicit []string) float64 {
	if len(explicit) == 0 {
		return 0
	}

	lower := strings.ToLower(resume)
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(lower) {
		// A trailing period ends a sentence; a leading one belongs to ".net".
		token := strings.TrimLeft(strings.TrimRight(field, `.,;:()[]{}"'!?`), `,;:()[]{}"'!?`)
		if token != "" {
			tokens[token] = true
		}
	}

	matches := 0
	for _, skill := range explicit {
		if strings.Contains(skill, " ") {
			if taxonomy.ContainsTerm(lower, skill) {
				matches++
			}
			continue
		}
		if tokens[skill] {
			matches++
		}
	}
	return round2(float64(matches) / float64(len(explicit)))
}
