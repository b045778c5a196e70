package util

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var privateIPBlocks []*net.IPNet

//providerNamePattern restricts provider identifiers to characters which are
//safe to embed in storage queries and DNS labels
var providerNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

func init() {
	privateIPs, err := ParseSubnets(
		[]string{
			"10.0.0.0/8",     // RFC1918
			"172.16.0.0/12",  // RFC1918
			"192.168.0.0/16", // RFC1918
		})

	if err == nil {
		privateIPBlocks = privateIPs
	} else {
		panic(fmt.Sprintf("Error defining private IPs: %v", err.Error()))
	}
}

// ParseSubnets parses the provided subnets into net.IPNet format
func ParseSubnets(subnets []string) ([]*net.IPNet, error) {
	var parsedSubnets []*net.IPNet

	for _, entry := range subnets {
		_, block, err := net.ParseCIDR(entry)
		if err != nil {
			return parsedSubnets, err
		}
		parsedSubnets = append(parsedSubnets, block)
	}
	return parsedSubnets, nil
}

//ValidateIPv4 returns the parsed address if the string is a well formed
//dotted-quad IPv4 address and an error otherwise. IPv6 addresses and
//hostnames are rejected.
func ValidateIPv4(ipStr string) (net.IP, error) {
	trimmed := strings.TrimSpace(ipStr)
	// IPv4-mapped IPv6 forms such as ::ffff:8.8.8.8 parse as IPv4 but are
	// not dotted quads
	if strings.Contains(trimmed, ":") {
		return nil, fmt.Errorf("%q is not an IPv4 address", ipStr)
	}
	ip := net.ParseIP(trimmed)
	if ip == nil {
		return nil, fmt.Errorf("%q is not a valid IP address", ipStr)
	}
	ipv4 := ip.To4()
	if ipv4 == nil {
		return nil, fmt.Errorf("%q is not an IPv4 address", ipStr)
	}
	return ipv4, nil
}

//ValidProviderName returns true if the provider identifier is safe to use
//as key material in storage queries
func ValidProviderName(name string) bool {
	return providerNamePattern.MatchString(name)
}

//IPIsPubliclyRoutable checks if an IP address is publicly routable. See privateIPBlocks.
func IPIsPubliclyRoutable(ip net.IP) bool {
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() {
		return false
	}

	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return false
		}
	}
	return true
}

//ReverseOctets flips the octets of an IPv4 address for DNSBL zone queries.
//203.0.113.7 becomes 7.113.0.203.
func ReverseOctets(ip net.IP) string {
	ipv4 := ip.To4()
	if ipv4 == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.%d", ipv4[3], ipv4[2], ipv4[1], ipv4[0])
}
