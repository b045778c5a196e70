package data

import (
	"fmt"
	"time"
)

//Provider error classifications. A ProviderResult carrying any of these in
//its Error field is excluded from scoring but kept in the report for audit.
const (
	ErrorRateLimited          = "rate_limited"
	ErrorInvalidResponse      = "invalid_response"
	ErrorProviderNotAvailable = "provider_not_available"
)

//TimeoutError formats the error string for a provider call which exceeded
//its deadline
func TimeoutError(timeout time.Duration) string {
	return fmt.Sprintf("timeout after %ds", int(timeout/time.Second))
}

//ProviderFailedError formats the error string for a provider which crashed
//or returned data which could not be parsed
func ProviderFailedError(detail string) string {
	return fmt.Sprintf("provider failed (%s)", detail)
}

type (
	//ProviderResult holds a single provider's verdict for a single IP.
	//Exactly one of {score data, Error} is authoritative: a result with
	//Error set never contributes to scoring math.
	ProviderResult struct {
		IP         string `bson:"ip" json:"ip"`
		Provider   string `bson:"provider" json:"provider"`
		Score      int    `bson:"score" json:"score"`
		IsListed   bool   `bson:"is_listed" json:"is_listed"`
		IsTor      bool   `bson:"is_tor" json:"is_tor,omitempty"`
		IsProxy    bool   `bson:"is_proxy" json:"is_proxy,omitempty"`
		IsVPN      bool   `bson:"is_vpn" json:"is_vpn,omitempty"`
		Error      string `bson:"error,omitempty" json:"error,omitempty"`
		Cached     bool   `bson:"cached" json:"cached"`
		RetryAfter int    `bson:"retry_after,omitempty" json:"retry_after,omitempty"`
	}

	//Summary aggregates provider level counts for a unified report
	Summary struct {
		ProvidersQueried   int      `bson:"providers_queried" json:"providers_queried"`
		ProvidersResponded int      `bson:"providers_responded" json:"providers_responded"`
		ProvidersErrored   int      `bson:"providers_errored" json:"providers_errored"`
		ListedBy           []string `bson:"listed_by" json:"listed_by"`
		IsTor              bool     `bson:"is_tor" json:"is_tor"`
		IsProxy            bool     `bson:"is_proxy" json:"is_proxy"`
		IsVPN              bool     `bson:"is_vpn" json:"is_vpn"`
		CacheHits          int      `bson:"cache_hits" json:"cache_hits"`
		CacheMisses        int      `bson:"cache_misses" json:"cache_misses"`
	}

	//UnifiedReport is the merged verdict for one IP. It is immutable once
	//constructed and safe to pass across goroutine boundaries by value.
	UnifiedReport struct {
		IP             string           `bson:"ip" json:"ip"`
		ScanTime       string           `bson:"scan_time" json:"scan_time"`
		UnifiedScore   int              `bson:"unified_score" json:"unified_score"`
		RiskLevel      string           `bson:"risk_level" json:"risk_level"`
		Recommendation string           `bson:"recommendation" json:"recommendation"`
		Summary        Summary          `bson:"summary" json:"summary"`
		Providers      []ProviderResult `bson:"providers" json:"providers"`
		DNSBLHits      []string         `bson:"dnsbl_hits,omitempty" json:"dnsbl_hits,omitempty"`
	}

	//BatchSummary collects the reports for a batch run along with
	//aggregate counts. Partial results are always the goal: a batch never
	//aborts because of a single IP's failure.
	BatchSummary struct {
		RunID      string          `bson:"run_id" json:"run_id"`
		StartedAt  string          `bson:"started_at" json:"started_at"`
		FinishedAt string          `bson:"finished_at" json:"finished_at"`
		Total      int             `bson:"total" json:"total"`
		Clean      int             `bson:"clean" json:"clean"`
		Flagged    int             `bson:"flagged" json:"flagged"`
		Skipped    int             `bson:"skipped" json:"skipped"`
		Reports    []UnifiedReport `bson:"reports" json:"reports"`
	}
)

//Errored returns true if the result represents a provider failure rather
//than a scored verdict
func (r *ProviderResult) Errored() bool {
	return r.Error != ""
}

//Flagged returns true if the report warrants attention beyond the clean
//risk level
func (u *UnifiedReport) Flagged() bool {
	return u.RiskLevel != RiskClean || len(u.DNSBLHits) > 0
}

//Risk levels ordered from least to most severe
const (
	RiskClean    = "clean"
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)
