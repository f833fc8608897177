package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
)

// MaxPlausibleYears bounds the numbers read as years of experience; anything
// larger is more likely a company age or a date.
const MaxPlausibleYears = 50

var (
	yearsPattern = regexp.MustCompile(`(?i)\b(\d{1,3})\s*\+?\s*(?:years?|yrs?)\b`)

	// Keyword groups in precedence order.
	levelPatterns = []struct {
		level   string
		pattern *regexp.Regexp
	}{
		{types.LevelLead, regexp.MustCompile(`(?i)\b(?:tech(?:nical)? lead|team lead|lead (?:engineer|developer)|principal|staff (?:engineer|software|developer|data)|architect)\b`)},
		{types.LevelSenior, regexp.MustCompile(`(?i)\b(?:senior|sr\.?)\b`)},
		{types.LevelMid, regexp.MustCompile(`(?i)\b(?:mid[- ]level|intermediate)\b`)},
		{types.LevelEntry, regexp.MustCompile(`(?i)\b(?:entry[- ]level|junior|jr\.?|recent graduates?|new grad(?:uate)?s?|intern(?:ship)?)\b`)},
	}

	optionalDegree = regexp.MustCompile(`(?i)\b(?:preferred|plus|nice to have|or equivalent|bonus)\b`)

	// A sentence ends at a newline or at ".", "!" or "?" followed by a capital.
	sentenceEnd = regexp.MustCompile(`[.!?]\s+[A-Z(]|\n`)
)

// YearsMention is one "N years" figure and where it sits in the text.
type YearsMention struct {
	Years      int
	Start, End int
}

// FindYears locates every "N years" / "N+ yrs" figure in text, in order.
func FindYears(text string) []YearsMention {
	var mentions []YearsMention
	for _, loc := range yearsPattern.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		mentions = append(mentions, YearsMention{Years: n, Start: loc[0], End: loc[1]})
	}
	return mentions
}

// YearsMentioned returns the figures found by FindYears.
func YearsMentioned(text string) []int {
	var years []int
	for _, m := range FindYears(text) {
		years = append(years, m.Years)
	}
	return years
}

// ExtractExperience derives the seniority band a posting asks for. Explicit
// level wording wins; otherwise the largest plausible years figure decides.
func ExtractExperience(text string) types.Experience {
	var exp types.Experience
	for _, n := range YearsMentioned(text) {
		if n > MaxPlausibleYears {
			continue
		}
		if exp.Years == nil || n > *exp.Years {
			years := n
			exp.Years = &years
		}
	}

	for _, lp := range levelPatterns {
		if lp.pattern.MatchString(text) {
			exp.Level = lp.level
			return exp
		}
	}

	switch {
	case exp.Years == nil:
		exp.Level = types.LevelUnspecified
	case *exp.Years <= 2:
		exp.Level = types.LevelEntry
	case *exp.Years < 5:
		exp.Level = types.LevelMid
	case *exp.Years < 8:
		exp.Level = types.LevelSenior
	default:
		exp.Level = types.LevelLead
	}
	return exp
}

// ExtractEducation finds the highest degree the posting names. The degree is
// optional when its sentence softens it ("preferred", "or equivalent").
func ExtractEducation(tables *taxonomy.Tables, text string) types.Education {
	edu := types.Education{Fields: []string{}}
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Offsets into lower must stay valid for text.
		text = lower
	}

	for _, degree := range tables.Degrees() {
		at := -1
		for _, kw := range degree.Keywords {
			if i := taxonomy.IndexTerm(lower, kw); i >= 0 && (at < 0 || i < at) {
				at = i
			}
		}
		if at < 0 {
			continue
		}

		sentence := enclosingSentence(text, at)
		lowerSentence := strings.ToLower(sentence)
		edu.MinDegree = degree.Level
		edu.Required = !optionalDegree.MatchString(sentence)
		edu.Fields = studyFields(tables, lowerSentence)
		return edu
	}
	return edu
}

func enclosingSentence(text string, at int) string {
	start, end := 0, len(text)
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// The boundary sits right after the punctuation or newline.
		boundary := loc[0] + 1
		if boundary <= at {
			start = boundary
			continue
		}
		end = boundary
		break
	}
	return text[start:end]
}

// studyFields returns fields named in sentence, in taxonomy order. A field
// contained in one already found ("engineering" in "software engineering")
// is skipped.
func studyFields(tables *taxonomy.Tables, sentence string) []string {
	fields := make([]string, 0)
	for _, field := range tables.StudyFields() {
		if !taxonomy.ContainsTerm(sentence, field) {
			continue
		}
		covered := false
		for _, f := range fields {
			if taxonomy.ContainsTerm(f, field) {
				covered = true
				break
			}
		}
		if !covered {
			fields = append(fields, field)
		}
	}
	return fields
}
