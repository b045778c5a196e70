package risk

import (
	"testing"

	"github.com/ipvet/ipvet/pkg/data"
	"github.com/stretchr/testify/assert"
)

const testIP = "203.0.113.7"

func scored(provider string, score int, listed bool) data.ProviderResult {
	return data.ProviderResult{
		IP:       testIP,
		Provider: provider,
		Score:    score,
		IsListed: listed,
	}
}

func errored(provider string, errStr string) data.ProviderResult {
	return data.ProviderResult{
		IP:       testIP,
		Provider: provider,
		Error:    errStr,
	}
}

func TestMergeUnanimousClean(t *testing.T) {
	results := []data.ProviderResult{
		scored("abuseipdb", 0, false),
		scored("internetdb", 0, false),
		scored("torexit", 0, false),
	}

	report := Merge(testIP, results, DefaultScoring())

	assert.Equal(t, 0, report.UnifiedScore)
	assert.Equal(t, data.RiskClean, report.RiskLevel)
	assert.Equal(t, 3, report.Summary.ProvidersQueried)
	assert.Equal(t, 3, report.Summary.ProvidersResponded)
	assert.Equal(t, 0, report.Summary.ProvidersErrored)
	assert.Empty(t, report.Summary.ListedBy)
	assert.False(t, report.Flagged())
}

func TestMergeStrongConsensus(t *testing.T) {
	results := []data.ProviderResult{
		scored("abuseipdb", 90, true),
		scored("ipqs", 85, true),
		scored("internetdb", 60, true),
	}

	report := Merge(testIP, results, DefaultScoring())

	// avg 78 plus the three-source boost of 15, capped at 100
	assert.Equal(t, 93, report.UnifiedScore)
	assert.Equal(t, data.RiskCritical, report.RiskLevel)
	assert.Equal(t, []string{"abuseipdb", "internetdb", "ipqs"}, report.Summary.ListedBy)
	assert.True(t, report.Flagged())
}

func TestMergeBoostCapped(t *testing.T) {
	results := []data.ProviderResult{
		scored("abuseipdb", 100, true),
		scored("ipqs", 95, true),
		scored("internetdb", 100, true),
	}

	report := Merge(testIP, results, DefaultScoring())
	assert.Equal(t, 100, report.UnifiedScore, "the boost never pushes past 100")
}

func TestMergeTwoListedBoost(t *testing.T) {
	results := []data.ProviderResult{
		scored("abuseipdb", 40, true),
		scored("ipqs", 40, true),
		scored("internetdb", 10, false),
	}

	report := Merge(testIP, results, DefaultScoring())

	// avg 30 plus the two-source boost of 10
	assert.Equal(t, 40, report.UnifiedScore)
	assert.Equal(t, data.RiskMedium, report.RiskLevel)
}

func TestMergeErroredExcludedFromScoring(t *testing.T) {
	results := []data.ProviderResult{
		scored("abuseipdb", 80, true),
		errored("ipqs", data.ErrorRateLimited),
		errored("torexit", "timeout after 15s"),
	}

	report := Merge(testIP, results, DefaultScoring())

	assert.Equal(t, 80, report.UnifiedScore, "errored results do not dilute the average")
	assert.Equal(t, 1, report.Summary.ProvidersResponded)
	assert.Equal(t, 2, report.Summary.ProvidersErrored)
	assert.Len(t, report.Providers, 3, "errored results stay in the audit trail")
}

func TestMergeAllErrored(t *testing.T) {
	results := []data.ProviderResult{
		errored("abuseipdb", data.ErrorRateLimited),
		errored("ipqs", data.ErrorProviderNotAvailable),
	}

	report := Merge(testIP, results, DefaultScoring())

	assert.Equal(t, 0, report.UnifiedScore)
	assert.Equal(t, data.RiskClean, report.RiskLevel)
	assert.Equal(t, 0, report.Summary.ProvidersResponded)
	assert.Equal(t, 2, report.Summary.ProvidersErrored)
}

func TestMergeOrderIndependent(t *testing.T) {
	results := []data.ProviderResult{
		scored("abuseipdb", 90, true),
		errored("torexit", "timeout after 15s"),
		scored("ipqs", 40, true),
		scored("internetdb", 10, false),
	}
	reversed := make([]data.ProviderResult, len(results))
	for i := range results {
		reversed[len(results)-1-i] = results[i]
	}

	forward := Merge(testIP, results, DefaultScoring())
	backward := Merge(testIP, reversed, DefaultScoring())

	// the timestamp is the only field allowed to differ
	backward.ScanTime = forward.ScanTime
	assert.Equal(t, forward, backward)
}

func TestMergeFlagsORReduce(t *testing.T) {
	results := []data.ProviderResult{
		{IP: testIP, Provider: "ipqs", Score: 20, IsProxy: true, IsVPN: true},
		{IP: testIP, Provider: "torexit", Score: 40, IsListed: true, IsTor: true},
		{IP: testIP, Provider: "internetdb", Score: 0},
	}

	report := Merge(testIP, results, DefaultScoring())

	assert.True(t, report.Summary.IsTor)
	assert.True(t, report.Summary.IsProxy)
	assert.True(t, report.Summary.IsVPN)
}

func TestMergeCacheCounts(t *testing.T) {
	results := []data.ProviderResult{
		{IP: testIP, Provider: "abuseipdb", Score: 10, Cached: true},
		{IP: testIP, Provider: "ipqs", Score: 10},
		errored("torexit", data.ErrorRateLimited),
	}

	report := Merge(testIP, results, DefaultScoring())

	assert.Equal(t, 1, report.Summary.CacheHits)
	assert.Equal(t, 1, report.Summary.CacheMisses, "errored results count toward neither")
}

func TestLevelThresholds(t *testing.T) {
	cases := []struct {
		score int
		level string
	}{
		{0, data.RiskClean},
		{4, data.RiskClean},
		{5, data.RiskLow},
		{24, data.RiskLow},
		{25, data.RiskMedium},
		{49, data.RiskMedium},
		{50, data.RiskHigh},
		{74, data.RiskHigh},
		{75, data.RiskCritical},
		{100, data.RiskCritical},
	}

	for _, testCase := range cases {
		assert.Equal(t, testCase.level, LevelFromScore(testCase.score), "score %d", testCase.score)
	}
}

func TestRecommendationPerLevel(t *testing.T) {
	for _, level := range []string{
		data.RiskClean, data.RiskLow, data.RiskMedium, data.RiskHigh, data.RiskCritical,
	} {
		assert.NotEmpty(t, Recommendation(level), level)
	}
}
