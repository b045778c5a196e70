package batch

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ipvet/ipvet/util"
	log "github.com/sirupsen/logrus"
)

//dnsblTimeout bounds each zone lookup so that a dead resolver cannot
//stall the batch
const dnsblTimeout = 5 * time.Second

//OverlapChecker cross references an IP against a small fixed set of DNSBL
//zones. It is additive only: any failure degrades to "no overlap data"
//rather than failing the batch.
type OverlapChecker struct {
	Zones []string
	//Lookup resolves a hostname. Tests replace it with a fake; the
	//default queries the system resolver.
	Lookup func(ctx context.Context, host string) ([]string, error)

	log *log.Logger
}

//NewOverlapChecker builds a checker over the configured DNSBL zones
func NewOverlapChecker(zones []string, logger *log.Logger) *OverlapChecker {
	return &OverlapChecker{
		Zones:  zones,
		Lookup: net.DefaultResolver.LookupHost,
		log:    logger,
	}
}

//Check returns the subset of zones which list the reversed-octet address
func (c *OverlapChecker) Check(ip net.IP) []string {
	reversed := util.ReverseOctets(ip)
	if reversed == "" {
		return nil
	}

	var hits []string
	for _, zone := range c.Zones {
		ctx, cancel := context.WithTimeout(context.Background(), dnsblTimeout)
		addrs, err := c.Lookup(ctx, fmt.Sprintf("%s.%s", reversed, zone))
		cancel()

		if err != nil {
			// NXDOMAIN is the common "not listed" answer; anything else
			// is degraded lookup infrastructure, not a listing
			continue
		}
		if len(addrs) > 0 {
			hits = append(hits, zone)
		}
	}
	return hits
}
