package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/provider"
	"github.com/ipvet/ipvet/util"
)

const torExitZone = "torexit.dan.me.uk"

//torExitScore is the provider-local risk contribution of Tor exit
//membership. Exit nodes are not abusive per se, but are routinely burned
//for provisioning purposes.
const torExitScore = 40

//torExit checks Tor exit node membership via a DNSBL style reversed-octet
//lookup. No API key is required.
type torExit struct {
	zone     string
	resolver *net.Resolver
}

//NewTorExit creates the Tor exit list adapter
func NewTorExit() provider.Adapter {
	return &torExit{
		zone:     torExitZone,
		resolver: net.DefaultResolver,
	}
}

func (t *torExit) Name() string       { return "torexit" }
func (t *torExit) TTL() time.Duration { return cache.TTLShort }

func (t *torExit) Check(ctx context.Context, ip string) (*data.ProviderResult, error) {
	parsed, err := util.ValidateIPv4(ip)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s.%s", util.ReverseOctets(parsed), t.zone)
	addrs, err := t.resolver.LookupHost(ctx, query)
	if err != nil {
		var dnsErr *net.DNSError
		// NXDOMAIN means the address is not a known exit node
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return &data.ProviderResult{}, nil
		}
		return nil, err
	}

	if len(addrs) == 0 {
		return &data.ProviderResult{}, nil
	}
	return &data.ProviderResult{
		Score:    torExitScore,
		IsListed: true,
		IsTor:    true,
	}, nil
}
