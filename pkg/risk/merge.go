package risk

import (
	"sort"
	"time"

	"github.com/ipvet/ipvet/config"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/util"
)

//ScoringCfg tunes the corroboration boost. The boost amounts are
//empirically chosen and deployments may want different values, so they
//come from configuration rather than being hard constants.
type ScoringCfg struct {
	TwoListedBoost   int
	ThreeListedBoost int
}

//DefaultScoring mirrors the config defaults
func DefaultScoring() ScoringCfg {
	return ScoringCfg{
		TwoListedBoost:   10,
		ThreeListedBoost: 15,
	}
}

//ScoringFromConfig pulls the boost tuning out of the static config
func ScoringFromConfig(conf *config.Config) ScoringCfg {
	return ScoringCfg{
		TwoListedBoost:   conf.S.Scoring.TwoListedBoost,
		ThreeListedBoost: conf.S.Scoring.ThreeListedBoost,
	}
}

//Merge reduces a list of per-provider results into one unified report.
//The function is pure and order independent: shuffling the input never
//changes the output. Results carrying an error are excluded from the
//scoring math but retained in the report for audit.
func Merge(ip string, results []data.ProviderResult, scoring ScoringCfg) *data.UnifiedReport {
	summary := data.Summary{
		ProvidersQueried: len(results),
		ListedBy:         []string{},
	}

	totalScore := 0
	listedCount := 0

	for i := range results {
		result := &results[i]
		if result.Errored() {
			summary.ProvidersErrored++
			continue
		}
		summary.ProvidersResponded++
		totalScore += result.Score

		if result.IsListed {
			listedCount++
			summary.ListedBy = append(summary.ListedBy, result.Provider)
		}

		// a single credible detection is sufficient signal, so these
		// flags OR-reduce rather than average
		summary.IsTor = summary.IsTor || result.IsTor
		summary.IsProxy = summary.IsProxy || result.IsProxy
		summary.IsVPN = summary.IsVPN || result.IsVPN

		if result.Cached {
			summary.CacheHits++
		} else {
			summary.CacheMisses++
		}
	}

	unifiedScore := 0
	if summary.ProvidersResponded > 0 {
		unifiedScore = totalScore / summary.ProvidersResponded
	}

	// independent corroboration by several sources is stronger evidence
	// than any single high score
	if listedCount >= 3 {
		unifiedScore = util.Min(100, unifiedScore+scoring.ThreeListedBoost)
	} else if listedCount >= 2 {
		unifiedScore = util.Min(100, unifiedScore+scoring.TwoListedBoost)
	}

	// keep the audit trail and the listed_by summary deterministic
	// regardless of collection order
	sort.Strings(summary.ListedBy)
	ordered := make([]data.ProviderResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Provider < ordered[j].Provider
	})

	level := LevelFromScore(unifiedScore)

	return &data.UnifiedReport{
		IP:             ip,
		ScanTime:       time.Now().UTC().Format(time.RFC3339),
		UnifiedScore:   unifiedScore,
		RiskLevel:      level,
		Recommendation: Recommendation(level),
		Summary:        summary,
		Providers:      ordered,
	}
}
