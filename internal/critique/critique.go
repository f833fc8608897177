// Package critique reviews a posting for contradictions, vagueness and gaps,
// and scores its overall quality.
package critique

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-intel/internal/parsing"
	"github.com/jonathan/job-intel/internal/skills"
	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
)

// Thresholds are the tunable limits used by the checks.
type Thresholds struct {
	// EntryLevelMaxYears is the years figure at which an entry-level posting
	// is considered contradictory.
	EntryLevelMaxYears int
	// MaxRealisticYears is the largest years requirement considered normal.
	MaxRealisticYears int
	// MinLength is the shortest acceptable posting, in characters.
	MinLength int
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EntryLevelMaxYears: 2,
		MaxRealisticYears:  15,
		MinLength:          200,
	}
}

// BalancedMessage is emitted when no check finds anything.
const BalancedMessage = "Requirements appear well-balanced; no issues detected."

// MaxLanguages is the number of programming languages a posting may list
// before it is flagged.
const MaxLanguages = 3

var (
	entryPhrase    = regexp.MustCompile(`(?i)\b(?:entry[- ]level|junior|new grad(?:uate)?s?|recent graduates?)\b`)
	fullStackTerms = []string{"full-stack", "full stack", "fullstack"}
	clauseEnd      = regexp.MustCompile(`[;,\n]|\.\s`)
)

// checkContext is the shared read-only input of every check.
type checkContext struct {
	tables *taxonomy.Tables
	limits Thresholds
	text   string
	lower  string
	years  []yearsMention
}

type yearsMention struct {
	years  int
	clause string // lower-cased clause around the mention
}

type check func(*checkContext) *types.CritiqueItem

// checks run in this order; each is independent of the others.
var checks = []check{
	checkEntryLevelYears,
	checkUnrealisticYears,
	checkImpossibleTechYears,
	checkVagueCloud,
	checkTooManyLanguages,
	checkMissingSalary,
	checkMissingLocation,
	checkFullStackScope,
	checkBuzzwords,
	checkTooShort,
	checkUnneededPhD,
}

// Critique runs every check against normalized text. If none fires, a single
// informational item saying so is returned.
func Critique(tables *taxonomy.Tables, limits Thresholds, text string) []types.CritiqueItem {
	ctx := newCheckContext(tables, limits, text)

	items := make([]types.CritiqueItem, 0)
	for _, c := range checks {
		if item := c(ctx); item != nil {
			items = append(items, *item)
		}
	}
	if len(items) == 0 {
		items = append(items, types.CritiqueItem{Severity: types.SeverityInfo, Message: BalancedMessage})
	}
	return items
}

func newCheckContext(tables *taxonomy.Tables, limits Thresholds, text string) *checkContext {
	ctx := &checkContext{
		tables: tables,
		limits: limits,
		text:   text,
		lower:  strings.ToLower(text),
	}
	for _, m := range parsing.FindYears(ctx.lower) {
		if m.Years > parsing.MaxPlausibleYears {
			continue
		}
		ctx.years = append(ctx.years, yearsMention{years: m.Years, clause: clauseAround(ctx.lower, m.Start, m.End)})
	}
	return ctx
}

// clauseAround returns the clause of text holding text[start:end].
func clauseAround(text string, start, end int) string {
	from := 0
	for _, loc := range clauseEnd.FindAllStringIndex(text[:start], -1) {
		from = loc[1]
	}
	to := len(text)
	if loc := clauseEnd.FindStringIndex(text[end:]); loc != nil {
		to = end + loc[0]
	}
	return text[from:to]
}

func (c *checkContext) maxYears() int {
	highest := 0
	for _, m := range c.years {
		if m.years > highest {
			highest = m.years
		}
	}
	return highest
}

func warning(format string, args ...any) *types.CritiqueItem {
	return &types.CritiqueItem{Severity: types.SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func info(format string, args ...any) *types.CritiqueItem {
	return &types.CritiqueItem{Severity: types.SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func critical(format string, args ...any) *types.CritiqueItem {
	return &types.CritiqueItem{Severity: types.SeverityCritical, Message: fmt.Sprintf(format, args...)}
}

func checkEntryLevelYears(c *checkContext) *types.CritiqueItem {
	if !entryPhrase.MatchString(c.text) {
		return nil
	}
	if years := c.maxYears(); years >= c.limits.EntryLevelMaxYears && years > 0 {
		return warning("Entry-level role asks for %d+ years of experience; clarify the expectation.", years)
	}
	return nil
}

func checkUnrealisticYears(c *checkContext) *types.CritiqueItem {
	if years := c.maxYears(); years > c.limits.MaxRealisticYears {
		return info("Requires %d years of experience, more than most candidates will have.", years)
	}
	return nil
}

// checkImpossibleTechYears flags years requirements longer than the named
// technology has existed. The technology must share a clause with the figure.
func checkImpossibleTechYears(c *checkContext) *types.CritiqueItem {
	var problems []string
	reported := make(map[string]bool)
	technologies := c.tables.Technologies()

	for _, m := range c.years {
		for _, tech := range technologies {
			if reported[tech] || !taxonomy.ContainsTerm(m.clause, tech) {
				continue
			}
			age, _ := c.tables.TechnologyAge(tech)
			if m.years > age {
				reported[tech] = true
				problems = append(problems, fmt.Sprintf("%d years of %s (about %d years old)", m.years, tech, age))
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return critical("Impossible requirement: %s.", strings.Join(problems, "; "))
}

func checkVagueCloud(c *checkContext) *types.CritiqueItem {
	if !taxonomy.ContainsTerm(c.lower, "cloud") || taxonomy.ContainsAny(c.lower, c.tables.CloudProviders()) {
		return nil
	}
	return info("Cloud experience is requested without naming a provider.")
}

func checkTooManyLanguages(c *checkContext) *types.CritiqueItem {
	var languages []string
	for _, skill := range skills.Extract(c.tables, c.text) {
		if cat, _ := c.tables.Category(skill); cat == taxonomy.CategoryLanguage {
			languages = append(languages, skill)
		}
	}
	if len(languages) <= MaxLanguages {
		return nil
	}
	return warning("Lists %d programming languages (%s); consider which are essential.", len(languages), strings.Join(languages, ", "))
}

func checkMissingSalary(c *checkContext) *types.CritiqueItem {
	if hasSalary(c) {
		return nil
	}
	return info("No salary or compensation information provided.")
}

func checkMissingLocation(c *checkContext) *types.CritiqueItem {
	if hasLocation(c) {
		return nil
	}
	return info("No location or remote-work policy mentioned.")
}

func checkFullStackScope(c *checkContext) *types.CritiqueItem {
	if !taxonomy.ContainsAny(c.lower, fullStackTerms) {
		return nil
	}
	var layers []string
	for _, layer := range c.tables.StackLayers() {
		if taxonomy.ContainsAny(c.lower, layer.Terms) {
			layers = append(layers, layer.Name)
		}
	}
	if len(layers) < 4 {
		return nil
	}
	return warning("Full-stack role spans %d technology layers (%s); the scope may be unrealistic.", len(layers), strings.Join(layers, ", "))
}

func checkBuzzwords(c *checkContext) *types.CritiqueItem {
	found := buzzwords(c)
	if len(found) == 0 {
		return nil
	}
	return warning("Uses informal buzzwords (%s); describe the actual expectations instead.", strings.Join(found, ", "))
}

func checkTooShort(c *checkContext) *types.CritiqueItem {
	if n := utf8.RuneCountInString(c.text); n < c.limits.MinLength {
		return warning("Posting is very short (%d characters); add responsibilities and requirements.", n)
	}
	return nil
}

func checkUnneededPhD(c *checkContext) *types.CritiqueItem {
	var phd []string
	for _, d := range c.tables.Degrees() {
		if d.Level == "phd" {
			phd = d.Keywords
		}
	}
	if !taxonomy.ContainsAny(c.lower, phd) || taxonomy.ContainsAny(c.lower, c.tables.Signals(taxonomy.SignalResearch)) {
		return nil
	}
	return info("Asks for a PhD without any research responsibilities; consider whether it is necessary.")
}

func hasSalary(c *checkContext) bool {
	return taxonomy.ContainsAny(c.lower, c.tables.Signals(taxonomy.SignalSalary)) || parsing.ExtractSalary(c.text) != nil
}

func hasLocation(c *checkContext) bool {
	return taxonomy.ContainsAny(c.lower, c.tables.Signals(taxonomy.SignalLocation))
}

func buzzwords(c *checkContext) []string {
	return taxonomy.MatchAll(c.lower, c.tables.Buzzwords())
}
