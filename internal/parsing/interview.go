package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-intel/internal/taxonomy"
)

// InterviewProcess is what a posting reveals about its hiring loop.
type InterviewProcess struct {
	Stages []string
	// TotalRounds is set only when the posting names more rounds than
	// stages were detected.
	TotalRounds *int
	Duration    string
}

var (
	roundsPattern = regexp.MustCompile(`(\d+)\s*(?:-\s*)?rounds?\b`)

	durationPatterns = []struct {
		pattern *regexp.Regexp
		format  func(m []string) string
	}{
		{regexp.MustCompile(`\b(\d+)\s*-\s*(\d+)\s*weeks?\b`), func(m []string) string { return fmt.Sprintf("%s-%s weeks", m[1], m[2]) }},
		{regexp.MustCompile(`\b(\d+)\s*-\s*(\d+)\s*months?\b`), func(m []string) string { return fmt.Sprintf("%s-%s months", m[1], m[2]) }},
		{regexp.MustCompile(`\b(\d+)\s*days?\b`), func(m []string) string { return fmt.Sprintf("%s days", m[1]) }},
	}
)

// DetectInterviewProcess reports the interview stages mentioned in text, in
// stage-definition order. Keywords match as plain substrings.
func DetectInterviewProcess(tables *taxonomy.Tables, text string) InterviewProcess {
	lower := strings.ToLower(text)
	process := InterviewProcess{Stages: make([]string, 0)}

	for _, stage := range tables.InterviewStages() {
		for _, kw := range stage.Keywords {
			if strings.Contains(lower, kw) {
				process.Stages = append(process.Stages, stage.Name)
				break
			}
		}
	}

	if m := roundsPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > len(process.Stages) {
			process.TotalRounds = &n
		}
	}

	// Day and week counts elsewhere in a posting are usually about leave or
	// onboarding, so only estimate a duration when interviews come up.
	if len(process.Stages) > 0 || strings.Contains(lower, "interview") {
		for _, dp := range durationPatterns {
			if m := dp.pattern.FindStringSubmatch(lower); m != nil {
				process.Duration = dp.format(m)
				break
			}
		}
	}
	return process
}
