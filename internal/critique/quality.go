package critique

import (
	"fmt"
	"unicode/utf8"

	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
)

const (
	baseScore        = 100
	deductBrevity    = 20
	deductNoSalary   = 15
	deductNoLocation = 10
	deductBuzzwords  = 15
)

const (
	positiveBenefits = "Mentions benefits"
	positiveGrowth   = "Mentions growth or learning opportunities"
	positiveCulture  = "Describes culture or mission"
)

// ScoreQuality scores normalized text from 100 down. Positives are reported
// but never change the score.
func ScoreQuality(tables *taxonomy.Tables, limits Thresholds, text string) types.QualityReport {
	c := newCheckContext(tables, limits, text)
	report := types.QualityReport{Issues: make([]string, 0), Positives: make([]string, 0)}
	score := baseScore

	if n := utf8.RuneCountInString(text); n < limits.MinLength {
		score -= deductBrevity
		report.Issues = append(report.Issues, fmt.Sprintf("Posting is short (%d characters, minimum %d)", n, limits.MinLength))
	}
	if !hasSalary(c) {
		score -= deductNoSalary
		report.Issues = append(report.Issues, "Missing salary information")
	}
	if !hasLocation(c) {
		score -= deductNoLocation
		report.Issues = append(report.Issues, "Missing location or remote policy")
	}
	if len(buzzwords(c)) > 0 {
		score -= deductBuzzwords
		report.Issues = append(report.Issues, "Contains buzzwords")
	}
	report.Score = max(score, 0)
	report.Grade = Grade(report.Score)

	for _, p := range []struct {
		kind, label string
	}{
		{taxonomy.SignalBenefits, positiveBenefits},
		{taxonomy.SignalGrowth, positiveGrowth},
		{taxonomy.SignalCulture, positiveCulture},
	} {
		if taxonomy.ContainsAny(c.lower, tables.Signals(p.kind)) {
			report.Positives = append(report.Positives, p.label)
		}
	}
	return report
}

// Grade maps a 0-100 score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
