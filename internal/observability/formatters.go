// Package observability provides formatted output for the CLI's human-readable mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/job-intel/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed summaries of an analysis.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintAnalysis prints every section of resp followed by its summary.
func (p *Printer) PrintAnalysis(resp *types.AnalyzeResponse) {
	if resp == nil {
		return
	}
	p.PrintProfile(resp)
	p.PrintSkills(resp)
	p.PrintCritiques(resp.Critiques)
	p.PrintQuality(&resp.Quality)
	p.printBox("SUMMARY", wrap(resp.Summary, boxWidth-4))
}

// PrintProfile outputs title, role, seniority, education and compensation.
func (p *Printer) PrintProfile(resp *types.AnalyzeResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	title := "(not detected)"
	if resp.Title != nil {
		title = *resp.Title
	}
	sb.WriteString(fmt.Sprintf("Title:      %s\n", title))
	if resp.Role != nil {
		sb.WriteString(fmt.Sprintf("Role:       %s (%.0f%%)\n", resp.Role.Role, resp.Role.Confidence*100))
	}

	level := resp.Experience.Level
	if resp.Experience.Years != nil {
		level = fmt.Sprintf("%s, %d+ years", level, *resp.Experience.Years)
	}
	sb.WriteString(fmt.Sprintf("Seniority:  %s\n", level))

	if resp.Education.MinDegree != "" {
		req := "preferred"
		if resp.Education.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("Education:  %s (%s)\n", resp.Education.MinDegree, req))
	}
	if resp.SalaryRange != nil {
		sb.WriteString(fmt.Sprintf("Salary:     %d-%d %s\n", resp.SalaryRange.Min, resp.SalaryRange.Max, resp.SalaryRange.Currency))
	}
	if len(resp.InterviewStages) > 0 {
		sb.WriteString(fmt.Sprintf("Interview:  %s\n", strings.Join(resp.InterviewStages, ", ")))
	}
	if resp.InterviewRounds != nil {
		sb.WriteString(fmt.Sprintf("Rounds:     %d\n", *resp.InterviewRounds))
	}
	if resp.InterviewDuration != nil {
		sb.WriteString(fmt.Sprintf("Duration:   %s\n", *resp.InterviewDuration))
	}
	if resp.ResumeAlignment != nil {
		sb.WriteString(fmt.Sprintf("Alignment:  %.0f%%\n", *resp.ResumeAlignment*100))
	}

	p.printBox("JOB PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs the top explicit skills, focus areas and inferred skills.
func (p *Printer) PrintSkills(resp *types.AnalyzeResponse) {
	if resp == nil || len(resp.ExplicitSkills) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Explicit skills: %d\n", len(resp.ExplicitSkills)))
	count := min(len(resp.ExplicitSkills), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", resp.ExplicitSkills[i]))
	}
	if len(resp.ExplicitSkills) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resp.ExplicitSkills)-maxItemsToShow))
	}

	if len(resp.FocusAreas) > 0 {
		sb.WriteString("\nFocus areas:\n")
		areas := append([]types.FocusArea(nil), resp.FocusAreas...)
		sort.SliceStable(areas, func(i, j int) bool { return areas[i].Weight > areas[j].Weight })
		for _, area := range areas {
			sb.WriteString(fmt.Sprintf("  %-12s %3.0f%%  %s\n", area.Name, area.Weight*100, strings.Join(area.Skills, ", ")))
		}
	}

	if len(resp.HiddenSkills) > 0 {
		sb.WriteString(fmt.Sprintf("\nImplied: %s\n", strings.Join(resp.HiddenSkills, ", ")))
	}

	p.printBox("SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

var severityMarks = map[types.Severity]string{
	types.SeverityCritical: "✗",
	types.SeverityWarning:  "⚠",
	types.SeverityInfo:     "•",
}

// PrintCritiques outputs each finding with a severity marker. Long messages
// wrap onto indented lines.
func (p *Printer) PrintCritiques(items []types.CritiqueItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	for _, item := range items {
		mark, ok := severityMarks[item.Severity]
		if !ok {
			mark = "•"
		}
		// marker, severity column and padding take 11 of the box's inner width
		lines := strings.Split(wrap(item.Message, boxWidth-15), "\n")
		sb.WriteString(fmt.Sprintf("%s %-8s %s\n", mark, item.Severity, lines[0]))
		for _, line := range lines[1:] {
			sb.WriteString(fmt.Sprintf("  %-8s %s\n", "", line))
		}
	}

	p.printBox("CRITIQUE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuality outputs the score, grade and the reasons behind it.
func (p *Printer) PrintQuality(q *types.QualityReport) {
	if q == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d/100  Grade: %s\n", q.Score, q.Grade))
	for _, issue := range q.Issues {
		sb.WriteString(fmt.Sprintf("  - %s\n", issue))
	}
	for _, positive := range q.Positives {
		sb.WriteString(fmt.Sprintf("  + %s\n", positive))
	}

	p.printBox("QUALITY", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len([]rune(line))+1+len([]rune(word)) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
