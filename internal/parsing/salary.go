package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/job-intel/internal/types"
)

// Currency reported for every salary range.
const Currency = "USD"

type salaryPattern struct {
	name      string
	pattern   *regexp.Regexp
	thousands bool // figures are in k-notation
}

// Salary patterns in priority order; the first one that matches wins.
var salaryPatterns = []salaryPattern{
	{
		name:      "k-range",
		pattern:   regexp.MustCompile(`(?i)\$?\s?(\d{1,3}(?:\.\d+)?)\s*k?\s*(?:-|–|to)\s*\$?\s?(\d{1,3}(?:\.\d+)?)\s*k\b`),
		thousands: true,
	},
	{
		name:      "k-single",
		pattern:   regexp.MustCompile(`(?i)\$?\s?(\d{1,3}(?:\.\d+)?)\s*k\b`),
		thousands: true,
	},
	{
		name:    "dollar-range",
		pattern: regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?\s*(?:-|–|to)\s*\$?\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?`),
	},
	{
		name:    "dollar-single",
		pattern: regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)`),
	},
}

// ExtractSalary returns the advertised pay range, or nil when no pattern
// matches. A single figure yields Min == Max.
func ExtractSalary(text string) *types.SalaryRange {
	for _, sp := range salaryPatterns {
		for _, loc := range sp.pattern.FindAllStringSubmatchIndex(text, -1) {
			if sp.thousands && !plausibleThousands(text, loc) {
				continue
			}

			var values []int
			for g := 1; g*2+1 < len(loc); g++ {
				if loc[g*2] < 0 {
					continue
				}
				v, ok := parseAmount(text[loc[g*2]:loc[g*2+1]], sp.thousands)
				if !ok {
					values = nil
					break
				}
				values = append(values, v)
			}
			if len(values) == 0 {
				continue
			}

			lo, hi := values[0], values[len(values)-1]
			if lo > hi {
				lo, hi = hi, lo
			}
			if hi == 0 {
				continue
			}
			return &types.SalaryRange{Min: lo, Max: hi, Currency: Currency}
		}
	}
	return nil
}

// plausibleThousands rejects k-notation matches that are the tail of a larger
// number ("1,500k") or a retirement plan ("401k").
func plausibleThousands(text string, loc []int) bool {
	first := loc[2]
	if first > 0 {
		switch prev := text[first-1]; {
		case prev >= '0' && prev <= '9', prev == ',', prev == '.':
			return false
		}
	}
	for g := 1; g*2+1 < len(loc); g++ {
		if loc[g*2] >= 0 && text[loc[g*2]:loc[g*2+1]] == "401" {
			return false
		}
	}
	return true
}

func parseAmount(token string, thousands bool) (int, bool) {
	token = strings.ReplaceAll(strings.TrimPrefix(token, "$"), ",", "")
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	if thousands {
		f *= 1000
	}
	return int(math.Round(f)), true
}
