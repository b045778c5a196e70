package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/provider"
)

const ipqsEndpoint = "https://ipqualityscore.com/api/json/ip"

//ipqs queries the IPQualityScore proxy/VPN/Tor detector
type ipqs struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type ipqsResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	FraudScore  int    `json:"fraud_score"`
	Proxy       bool   `json:"proxy"`
	VPN         bool   `json:"vpn"`
	Tor         bool   `json:"tor"`
	RecentAbuse bool   `json:"recent_abuse"`
}

//NewIPQS creates the IPQualityScore adapter
func NewIPQS(apiKey string) provider.Adapter {
	return &ipqs{
		apiKey:  apiKey,
		baseURL: ipqsEndpoint,
		client:  httpClient,
	}
}

func (q *ipqs) Name() string       { return "ipqs" }
func (q *ipqs) TTL() time.Duration { return cache.TTLMedium }

func (q *ipqs) Check(ctx context.Context, ip string) (*data.ProviderResult, error) {
	if q.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s/%s", q.baseURL, q.apiKey, ip), nil)
	if err != nil {
		return nil, err
	}

	resp, err := q.client.Do(req)
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

	var parsed ipqsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &provider.InvalidResponseError{Reason: err.Error()}
	}
	if !parsed.Success {
		// IPQS reports quota exhaustion in-band with a 200 status
		if strings.Contains(strings.ToLower(parsed.Message), "rate") ||
			strings.Contains(strings.ToLower(parsed.Message), "exceeded") {
			return nil, &provider.ThrottleError{}
		}
		return nil, &provider.InvalidResponseError{Reason: parsed.Message}
	}

	return &data.ProviderResult{
		Score:    parsed.FraudScore,
		IsListed: parsed.RecentAbuse,
		IsProxy:  parsed.Proxy,
		IsVPN:    parsed.VPN,
		IsTor:    parsed.Tor,
	}, nil
}
