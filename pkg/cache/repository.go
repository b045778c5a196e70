package cache

import (
	"fmt"
	"time"

	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/util"
)

//TTL classes assigned to providers by the volatility of their data.
//Fast-changing list style sources expire quickly while scan-derived data
//is kept for a week.
const (
	TTLShort   = 1 * time.Hour
	TTLMedium  = 4 * time.Hour
	TTLLong    = 7 * 24 * time.Hour
	TTLDefault = 24 * time.Hour
)

//pruneInterval bounds how often expired rows are purged so that pruning
//never dominates request latency
const pruneInterval = 1 * time.Hour

type (
	//Entry is a cached provider result along with its expiry bookkeeping
	Entry struct {
		IP       string              `bson:"ip"`
		Provider string              `bson:"provider"`
		Result   data.ProviderResult `bson:"result"`
		CachedAt time.Time           `bson:"cached_at"`
		TTL      int64               `bson:"ttl"` // seconds
	}

	//Repository persists provider results keyed by (ip, provider).
	//Expired entries read as misses, never as errors. Prune runs at most
	//once per pruneInterval unless forced.
	Repository interface {
		Get(ip string, provider string) (*data.ProviderResult, bool, error)
		Put(ip string, provider string, result *data.ProviderResult, ttl time.Duration) error
		Entries() ([]Entry, error)
		Prune(force bool) (int, error)
		Clear() (int, error)
	}
)

//Expired returns true if the entry is past its time to live
func (e *Entry) Expired(now time.Time) bool {
	return !e.CachedAt.Add(time.Duration(e.TTL) * time.Second).After(now)
}

//validateKey rejects key material which is unsafe to embed in a storage
//query. Invalid provider identifiers are rejected rather than coerced.
func validateKey(ip string, provider string) error {
	if _, err := util.ValidateIPv4(ip); err != nil {
		return err
	}
	if !util.ValidProviderName(provider) {
		return fmt.Errorf("invalid provider identifier %q", provider)
	}
	return nil
}
