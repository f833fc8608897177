// Package skills finds the skills a posting names and derives what follows
// from them: implied skills, focus areas, the closest role and resume overlap.
package skills

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/job-intel/internal/taxonomy"
)

// tokenPattern keeps "+", "#", "." and "-" inside tokens so c++, c#, node.js
// and scikit-learn survive tokenization.
var tokenPattern = regexp.MustCompile(`[a-z0-9+#.\-]+`)

type tally struct {
	count int
	first int
}

// Extract returns the distinct canonical skills named in text, most frequent
// first. Ties keep first-appearance order.
//
// Multi-word phrases are matched before single tokens and blanked out of the
// text, so "spring boot" or "react native" never also count as "react".
func Extract(tables *taxonomy.Tables, text string) []string {
	lower := []byte(strings.ToLower(text))
	found := make(map[string]*tally)
	record := func(skill string, pos, n int) {
		if t, ok := found[skill]; ok {
			t.count += n
			if pos < t.first {
				t.first = pos
			}
			return
		}
		found[skill] = &tally{count: n, first: pos}
	}

	for _, phrase := range tables.Phrases() {
		canonical, ok := tables.Canonical(phrase)
		if !ok {
			continue
		}
		if first, n := blankTerm(lower, phrase); n > 0 {
			record(canonical, first, n)
		}
	}

	for _, loc := range tokenPattern.FindAllIndex(lower, -1) {
		token := string(lower[loc[0]:loc[1]])
		if canonical, ok := canonicalToken(tables, token); ok {
			record(canonical, loc[0], 1)
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		a, b := found[skills[i]], found[skills[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})
	return skills
}

// canonicalToken resolves a token as written, then without trailing and
// finally without surrounding dots and dashes, so ".net." still finds ".net".
func canonicalToken(tables *taxonomy.Tables, token string) (string, bool) {
	if canonical, ok := tables.Canonical(token); ok {
		return canonical, true
	}
	right := strings.TrimRight(token, ".-")
	if right != "" && right != token {
		if canonical, ok := tables.Canonical(right); ok {
			return canonical, true
		}
	}
	both := strings.TrimLeft(right, ".-")
	if both != "" && both != right {
		return tables.Canonical(both)
	}
	return "", false
}

// blankTerm overwrites every whole-word occurrence of term with spaces and
// returns the offset of the first one and the number replaced.
func blankTerm(text []byte, term string) (first, n int) {
	first = -1
	for {
		start := taxonomy.IndexTerm(string(text), term)
		if start < 0 {
			return first, n
		}
		if first < 0 {
			first = start
		}
		for j := start; j < start+len(term); j++ {
			text[j] = ' '
		}
		n++
	}
}

// Categorize groups skills by taxonomy category. Each list keeps the order of
// skills; categories without skills are left out.
func Categorize(tables *taxonomy.Tables, skills []string) map[string][]string {
	out := make(map[string][]string)
	for _, skill := range skills {
		if cat, ok := tables.Category(skill); ok {
			out[cat] = append(out[cat], skill)
		}
	}
	return out
}

// InferHidden returns the sorted union of skills implied by the explicit ones.
func InferHidden(tables *taxonomy.Tables, explicit []string) []string {
	seen := make(map[string]bool)
	hidden := make([]string, 0)
	for _, skill := range explicit {
		for _, implied := range tables.Implied(skill) {
			if !seen[implied] {
				seen[implied] = true
				hidden = append(hidden, implied)
			}
		}
	}
	sort.Strings(hidden)
	return hidden
}
