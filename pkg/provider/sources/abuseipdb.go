package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/provider"
)

const abuseIPDBEndpoint = "https://api.abuseipdb.com/api/v2/check"

//abuseIPDB queries the AbuseIPDB abuse report database
type abuseIPDB struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type abuseIPDBResponse struct {
	Data struct {
		IPAddress            string `json:"ipAddress"`
		AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
		TotalReports         int    `json:"totalReports"`
		IsTor                bool   `json:"isTor"`
		IsWhitelisted        bool   `json:"isWhitelisted"`
	} `json:"data"`
}

//NewAbuseIPDB creates the AbuseIPDB adapter
func NewAbuseIPDB(apiKey string) provider.Adapter {
	return &abuseIPDB{
		apiKey:  apiKey,
		baseURL: abuseIPDBEndpoint,
		client:  httpClient,
	}
}

func (a *abuseIPDB) Name() string       { return "abuseipdb" }
func (a *abuseIPDB) TTL() time.Duration { return cache.TTLDefault }

func (a *abuseIPDB) Check(ctx context.Context, ip string) (*data.ProviderResult, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	query := url.Values{}
	query.Set("ipAddress", ip)
	query.Set("maxAgeInDays", "90")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Key", a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &provider.ThrottleError{RetryAfter: retryAfterHeader(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed abuseIPDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &provider.InvalidResponseError{Reason: err.Error()}
	}
	if parsed.Data.IPAddress == "" {
		return nil, &provider.InvalidResponseError{Reason: "missing data object"}
	}

	return &data.ProviderResult{
		Score:    parsed.Data.AbuseConfidenceScore,
		IsListed: parsed.Data.TotalReports > 0 && !parsed.Data.IsWhitelisted,
		IsTor:    parsed.Data.IsTor,
	}, nil
}
