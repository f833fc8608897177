package skills

import (
	"math"
	"strings"

	"github.com/jonathan/job-intel/internal/taxonomy"
	"github.com/jonathan/job-intel/internal/types"
)

// GeneralFocus names the fallback area used when no domain matched.
const GeneralFocus = "general"

// BuildFocusAreas weighs each focus domain by its share of the explicit
// skills. A skill may count towards several domains. When none match, a single
// "general" area holding every explicit skill is returned.
func BuildFocusAreas(tables *taxonomy.Tables, explicit []string) []types.FocusArea {
	areas := make([]types.FocusArea, 0)
	for _, domain := range tables.FocusDomains() {
		members := make(map[string]bool, len(domain.Skills))
		for _, s := range domain.Skills {
			members[s] = true
		}

		matched := make([]string, 0)
		for _, skill := range explicit {
			if members[skill] {
				matched = append(matched, skill)
			}
		}
		if len(matched) == 0 {
			continue
		}

		weight := 1.0
		if len(explicit) > 0 {
			weight = round2(float64(len(matched)) / float64(len(explicit)))
		}
		areas = append(areas, types.FocusArea{Name: domain.Name, Weight: weight, Skills: matched})
	}

	if len(areas) == 0 {
		areas = append(areas, types.FocusArea{
			Name:   GeneralFocus,
			Weight: 1.0,
			Skills: append(make([]string, 0, len(explicit)), explicit...),
		})
	}
	return areas
}

// IdentifyRole scores every role template by the share of its signature found
// among the explicit skills. The best score wins and earlier templates win
// ties. Nil means no template matched a single skill.
func IdentifyRole(tables *taxonomy.Tables, explicit []string) *types.RoleMatch {
	var best *types.RoleMatch
	bestScore := 0.0

	for _, role := range tables.Roles() {
		signature := make(map[string]bool, len(role.Signature))
		for _, s := range role.Signature {
			signature[strings.ToLower(s)] = true
		}

		matched := make([]string, 0)
		for _, skill := range explicit {
			if signature[skill] {
				matched = append(matched, skill)
			}
		}
		if len(matched) == 0 {
			continue
		}

		score := float64(len(matched)) / float64(len(signature))
		if best == nil || score > bestScore {
			bestScore = score
			best = &types.RoleMatch{Role: role.Name, Confidence: round2(score), MatchedSkills: matched}
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
