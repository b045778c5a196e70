//Package sources bundles the built in reputation source adapters. Each
//adapter is a thin HTTP or DNS shim which maps one provider's wire format
//onto a ProviderResult; everything stateful lives in the executor.
package sources

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ipvet/ipvet/config"
	"github.com/ipvet/ipvet/pkg/provider"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//httpClient is shared across adapters. Per-call deadlines come from the
//request context, so no client level timeout is set.
var httpClient = &http.Client{}

//BuildRegistry registers an adapter for every enabled provider
func BuildRegistry(conf *config.Config) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	available := map[string]provider.Adapter{
		"abuseipdb":  NewAbuseIPDB(conf.S.Providers.AbuseIPDBKey),
		"ipqs":       NewIPQS(conf.S.Providers.IPQSKey),
		"internetdb": NewInternetDB(),
		"torexit":    NewTorExit(),
	}

	for _, name := range conf.S.Providers.Enabled {
		adapter, ok := available[name]
		if !ok {
			// unknown names surface as provider_not_available at query
			// time rather than failing startup
			continue
		}
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

//retryAfterHeader parses the Retry-After response header, returning zero
//when it is absent or malformed
func retryAfterHeader(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
