package server

import "math"

// Indicative pricing tables for the instructor insurance calculator. Unknown
// keys degrade to the documented defaults rather than failing.
var (
	experienceBaseMonthly = map[string]float64{
		"0-2": 12,
		"3-5": 15,
		"5+":  18,
	}
	coverTypeMultipliers = map[string]float64{
		"liability": 1.0,
		"standard":  1.15,
		"premium":   1.3,
	}
	additionalOptionSurcharges = map[string]float64{
		"equipment": 4,
		"online":    3,
	}
)

const (
	defaultBaseMonthly  = 15.0
	premiumVarianceBand = 0.15
	monthsPerPolicyYear = 12
)

type premiumRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type premiumEstimate struct {
	Monthly premiumRange `json:"monthly"`
	Annual  premiumRange `json:"annual"`
}

// estimatePremium maps calculator inputs to an indicative monthly and annual
// premium band. Pure and deterministic: same inputs, same output.
func estimatePremium(experienceLevel, coverType string, additionalOptions []string) premiumEstimate {
	base, ok := experienceBaseMonthly[experienceLevel]
	if !ok {
		base = defaultBaseMonthly
	}

	multiplier, ok := coverTypeMultipliers[coverType]
	if !ok {
		multiplier = 1.0
	}

	monthly := base * multiplier
	for _, option := range additionalOptions {
		monthly += additionalOptionSurcharges[option]
	}

	low := int(math.Floor(monthly * (1 - premiumVarianceBand)))
	high := int(math.Ceil(monthly * (1 + premiumVarianceBand)))
	return premiumEstimate{
		Monthly: premiumRange{Low: low, High: high},
		Annual:  premiumRange{Low: low * monthsPerPolicyYear, High: high * monthsPerPolicyYear},
	}
}
