package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jonathan/job-intel/internal/types"
)

// Summarize builds a short human-readable digest of a profile. It only reads
// resp, so the same profile always yields the same text.
func Summarize(resp *types.AnalyzeResponse) string {
	var parts []string

	switch {
	case resp.Title != nil && resp.Role != nil:
		parts = append(parts, fmt.Sprintf("%s (closest role: %s).", *resp.Title, resp.Role.Role))
	case resp.Title != nil:
		parts = append(parts, *resp.Title+".")
	case resp.Role != nil:
		parts = append(parts, fmt.Sprintf("Closest role: %s.", resp.Role.Role))
	}

	if len(resp.ExplicitSkills) > 0 {
		top := resp.ExplicitSkills[:min(3, len(resp.ExplicitSkills))]
		parts = append(parts, fmt.Sprintf("Top skills: %s.", strings.Join(top, ", ")))
	} else {
		parts = append(parts, "No known skills found.")
	}

	if area := topFocus(resp.FocusAreas); area != nil {
		parts = append(parts, fmt.Sprintf("Primary focus: %s (%.0f%%).", area.Name, area.Weight*100))
	}

	if resp.Experience.Level != "" && resp.Experience.Level != types.LevelUnspecified {
		parts = append(parts, fmt.Sprintf("Seniority: %s.", resp.Experience.Level))
	}

	if s := resp.SalaryRange; s != nil {
		if s.Min == s.Max {
			parts = append(parts, fmt.Sprintf("Salary: %s %s.", formatAmount(s.Min), s.Currency))
		} else {
			parts = append(parts, fmt.Sprintf("Salary: %s-%s %s.", formatAmount(s.Min), formatAmount(s.Max), s.Currency))
		}
	}

	if len(resp.InterviewStages) > 0 {
		parts = append(parts, fmt.Sprintf("Interview stages: %s.", strings.Join(resp.InterviewStages, ", ")))
	}

	parts = append(parts, fmt.Sprintf("Quality grade %s (%d/100).", resp.Quality.Grade, resp.Quality.Score))

	if counts := severityCounts(resp.Critiques); counts != "" {
		parts = append(parts, fmt.Sprintf("Critiques: %s.", counts))
	}

	if resp.ResumeAlignment != nil {
		parts = append(parts, fmt.Sprintf("Resume alignment: %.0f%%.", math.Round(*resp.ResumeAlignment*100)))
	}

	return strings.Join(parts, " ")
}

// topFocus returns the heaviest focus area; earlier areas win ties.
func topFocus(areas []types.FocusArea) *types.FocusArea {
	var best *types.FocusArea
	for i := range areas {
		if best == nil || areas[i].Weight > best.Weight {
			best = &areas[i]
		}
	}
	return best
}

func severityCounts(items []types.CritiqueItem) string {
	counts := make(map[types.Severity]int)
	for _, it := range items {
		counts[it.Severity]++
	}
	var out []string
	for _, sev := range []types.Severity{types.SeverityCritical, types.SeverityWarning, types.SeverityInfo} {
		if n := counts[sev]; n > 0 {
			out = append(out, fmt.Sprintf("%d %s", n, sev))
		}
	}
	return strings.Join(out, ", ")
}

// formatAmount renders 120000 as "$120,000".
func formatAmount(n int) string {
	return "$" + humanize.Comma(int64(n))
}
