package risk

import (
	"github.com/ipvet/ipvet/pkg/data"
)

//Risk level thresholds, inclusive lower bounds on the boosted unified score
const (
	criticalThreshold = 75
	highThreshold     = 50
	mediumThreshold   = 25
	lowThreshold      = 5
)

//recommendations maps each risk level to its fixed operator guidance
var recommendations = map[string]string{
	data.RiskCritical: "AVOID - heavily flagged across multiple sources",
	data.RiskHigh:     "RISKY - flagged by multiple sources, use only if unavoidable",
	data.RiskMedium:   "CAUTION - some negative signals, review provider details",
	data.RiskLow:      "LIKELY SAFE - minor flags only",
	data.RiskClean:    "SAFE - no significant flags detected",
}

//LevelFromScore bands a unified score into one of the five risk levels
func LevelFromScore(score int) string {
	switch {
	case score >= criticalThreshold:
		return data.RiskCritical
	case score >= highThreshold:
		return data.RiskHigh
	case score >= mediumThreshold:
		return data.RiskMedium
	case score >= lowThreshold:
		return data.RiskLow
	default:
		return data.RiskClean
	}
}

//Recommendation returns the fixed guidance string for a risk level
func Recommendation(level string) string {
	return recommendations[level]
}
