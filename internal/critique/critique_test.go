package critique

import (
	"strings"
	"testing"

	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const balancedPosting = "Senior Backend Engineer. We build payment APIs in Python and PostgreSQL on AWS. " +
	"You will design services, review code and mentor engineers. Requirements: 5+ years of Python experience. " +
	"Salary: $150,000 - $180,000. Remote within the US. Benefits include health insurance and a learning budget."

// padding keeps short fixtures clear of the length check.
var padding = " " + strings.Repeat("We ship reliable software together. ", 6)

func critiqueOf(text string) []types.CritiqueItem {
	return Critique(taxonomy.Default(), DefaultThresholds(), text)
}

func messages(items []types.CritiqueItem) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(string(it.Severity) + ": " + it.Message + "\n")
	}
	return b.String()
}

// find returns the first item whose message contains substr.
func find(items []types.CritiqueItem, substr string) *types.CritiqueItem {
	for i := range items {
		if strings.Contains(items[i].Message, substr) {
			return &items[i]
		}
	}
	return nil
}

func TestCritique_BalancedFallback(t *testing.T) {
	items := critiqueOf(balancedPosting)

	require.Len(t, items, 1, messages(items))
	assert.Equal(t, types.SeverityInfo, items[0].Severity)
	assert.Equal(t, BalancedMessage, items[0].Message)
}

func TestCritique_FallbackNeverMixedWithFindings(t *testing.T) {
	items := critiqueOf("rockstar wanted")

	require.NotEmpty(t, items)
	assert.Nil(t, find(items, BalancedMessage))
}

func TestCritique_EntryLevelYears(t *testing.T) {
	text := "Junior Python Developer. Entry-level position requiring 5+ years of experience. " +
		"Salary: $50,000-$60,000. Remote." + padding

	item := find(critiqueOf(text), "Entry-level role")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityWarning, item.Severity)
	assert.Contains(t, item.Message, "5+ years")
}

func TestCritique_EntryLevelBelowThreshold(t *testing.T) {
	text := "Entry-level role, 1 year of experience helps. Salary $60,000. Remote." + padding
	assert.Nil(t, find(critiqueOf(text), "Entry-level role"))

	limits := DefaultThresholds()
	limits.EntryLevelMaxYears = 1
	assert.NotNil(t, find(Critique(taxonomy.Default(), limits, text), "Entry-level role"))
}

func TestCritique_UnrealisticYears(t *testing.T) {
	item := find(critiqueOf("Requires 20 years of experience. Salary $200,000. Remote."+padding), "Requires 20 years")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityInfo, item.Severity)

	assert.Nil(t, find(critiqueOf("Requires 15 years of experience."+padding), "more than most candidates"))
}

func TestCritique_ImpossibleTechnologyYears(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"fastapi", "Must have 8 years of FastAPI experience.", "8 years of fastapi (about 7 years old)"},
		{"alias", "Looking for 14 years with k8s.", "14 years of k8s (about 12 years old)"},
		{"golang is not go", "20+ years of Golang.", "20 years of golang (about 16 years old)"},
		{"technology before figure", "Kubernetes (13 years minimum).", "13 years of kubernetes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := find(critiqueOf(tt.text+padding), "Impossible requirement")
			require.NotNil(t, item)
			assert.Equal(t, types.SeverityCritical, item.Severity)
			assert.Contains(t, item.Message, tt.want)
		})
	}
}

func TestCritique_PossibleTechnologyYears(t *testing.T) {
	text := "5 years of Kubernetes. 10 years of Java, 3 years of Rust." + padding
	assert.Nil(t, find(critiqueOf(text), "Impossible requirement"))
}

func TestCritique_TechnologyMustShareClause(t *testing.T) {
	text := "We have been around for 14 years; our stack is Kubernetes." + padding
	assert.Nil(t, find(critiqueOf(text), "Impossible requirement"))
}

func TestCritique_VagueCloud(t *testing.T) {
	item := find(critiqueOf("Experience with cloud platforms."+padding), "Cloud experience")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityInfo, item.Severity)

	assert.Nil(t, find(critiqueOf("Cloud experience on AWS."+padding), "Cloud experience"))
	assert.Nil(t, find(critiqueOf("Google Cloud experience."+padding), "Cloud experience"))
}

func TestCritique_TooManyLanguages(t *testing.T) {
	item := find(critiqueOf("Python, Java, Ruby, Rust and Scala."+padding), "programming languages")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityWarning, item.Severity)
	assert.Contains(t, item.Message, "Lists 5 programming languages (python, java, ruby, rust, scala)")

	assert.Nil(t, find(critiqueOf("Python, Java and Ruby."+padding), "programming languages"))
}

func TestCritique_MissingSalaryAndLocation(t *testing.T) {
	items := critiqueOf("Build APIs." + padding)
	assert.NotNil(t, find(items, "No salary"))
	assert.NotNil(t, find(items, "No location"))

	items = critiqueOf("Build APIs. Pay is 120k. Hybrid in Berlin." + padding)
	assert.Nil(t, find(items, "No salary"))
	assert.Nil(t, find(items, "No location"))
}

func TestCritique_FullStackScope(t *testing.T) {
	text := "Full-stack engineer using React, Node.js, PostgreSQL, Kubernetes and Swift." + padding
	item := find(critiqueOf(text), "Full-stack role")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityWarning, item.Severity)
	assert.Contains(t, item.Message, "5 technology layers (frontend, backend, database, devops, mobile)")

	narrow := "Full stack engineer using React, Node.js and PostgreSQL." + padding
	assert.Nil(t, find(critiqueOf(narrow), "Full-stack role"))
}

func TestCritique_Buzzwords(t *testing.T) {
	item := find(critiqueOf("Join as a coding ninja and rockstar developer."+padding), "buzzwords")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityWarning, item.Severity)
	assert.Contains(t, item.Message, "(rockstar, ninja)")
}

func TestCritique_TooShort(t *testing.T) {
	item := find(critiqueOf("Go developer wanted."), "very short")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityWarning, item.Severity)
	assert.Contains(t, item.Message, "20 characters")

	limits := DefaultThresholds()
	limits.MinLength = 10
	assert.Nil(t, find(Critique(taxonomy.Default(), limits, "Go developer wanted."), "very short"))
}

func TestCritique_PhDWithoutResearch(t *testing.T) {
	item := find(critiqueOf("PhD in Computer Science required to maintain our billing service."+padding), "PhD")
	require.NotNil(t, item)
	assert.Equal(t, types.SeverityInfo, item.Severity)

	assert.Nil(t, find(critiqueOf("PhD required for this research scientist role."+padding), "PhD"))
}

func TestCritique_FixedOrder(t *testing.T) {
	text := "Entry-level rockstar with 20 years of cloud experience"
	items := critiqueOf(text)

	var got []string
	for _, it := range items {
		got = append(got, strings.SplitN(it.Message, " ", 2)[0])
	}
	assert.Equal(t, []string{"Entry-level", "Requires", "Cloud", "No", "No", "Uses", "Posting"}, got)
}
