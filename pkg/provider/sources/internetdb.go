package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/provider"
	"github.com/ipvet/ipvet/util"
)

const internetDBEndpoint = "https://internetdb.shodan.io"

//internetDB queries Shodan's keyless InternetDB for scan-derived open
//port and vulnerability data. The data changes slowly, hence the long TTL.
type internetDB struct {
	baseURL string
	client  *http.Client
}

type internetDBResponse struct {
	IP    string   `json:"ip"`
	Ports []int    `json:"ports"`
	Tags  []string `json:"tags"`
	Vulns []string `json:"vulns"`
}

//NewInternetDB creates the Shodan InternetDB adapter
func NewInternetDB() provider.Adapter {
	return &internetDB{
		baseURL: internetDBEndpoint,
		client:  httpClient,
	}
}

func (s *internetDB) Name() string       { return "internetdb" }
func (s *internetDB) TTL() time.Duration { return cache.TTLLong }

func (s *internetDB) Check(ctx context.Context, ip string) (*data.ProviderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s", s.baseURL, ip), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// InternetDB returns 404 for addresses it has no scan data on
	if resp.StatusCode == http.StatusNotFound {
		return &data.ProviderResult{}, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &provider.ThrottleError{RetryAfter: retryAfterHeader(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed internetDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &provider.InvalidResponseError{Reason: err.Error()}
	}

	// score scales with known vulnerabilities, lightly weighted by the
	// amount of exposed surface
	score := util.Min(100, len(parsed.Vulns)*20+len(parsed.Ports)*2)

	return &data.ProviderResult{
		Score:    score,
		IsListed: len(parsed.Vulns) > 0,
		IsProxy:  util.StringInSlice("proxy", parsed.Tags),
		IsVPN:    util.StringInSlice("vpn", parsed.Tags),
		IsTor:    util.StringInSlice("tor", parsed.Tags),
	}, nil
}
