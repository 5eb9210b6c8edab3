package discovery

import (
	"fmt"
	"net"
	"strconv"
)

const (
	// DefaultGroup is the SSDP multicast group
	DefaultGroup = "239.255.255.250"

	// DefaultPort is the SSDP port
	DefaultPort = 1900

	// SearchTargetECP is the search type Roku devices answer to
	SearchTargetECP = "roku:ecp"
)

// DefaultGroupAddress is DefaultGroup and DefaultPort joined as host:port.
var DefaultGroupAddress = net.JoinHostPort(DefaultGroup, strconv.Itoa(DefaultPort))

// Query is a single M-SEARCH probe. It is built once per discovery attempt
// and never modified.
type Query struct {
	// Group is the destination host, normally the SSDP multicast group
	Group string

	// Port is the destination UDP port
	Port int

	// SearchTarget is the ST header value (e.g., "roku:ecp")
	SearchTarget string
}

// NewQuery returns the standard ECP probe for the SSDP multicast group
func NewQuery() Query {
	return Query{
		Group:        DefaultGroup,
		Port:         DefaultPort,
		SearchTarget: SearchTargetECP,
	}
}

// NewQueryForAddress builds a query for a host:port destination
func NewQueryForAddress(address, searchTarget string) (Query, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return Query{}, fmt.Errorf("invalid group address %q: %w", address, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Query{}, fmt.Errorf("invalid group port %q", portStr)
	}

	if searchTarget == "" {
		searchTarget = SearchTargetECP
	}

	return Query{
		Group:        host,
		Port:         port,
		SearchTarget: searchTarget,
	}, nil
}

// Address returns the destination as host:port
func (q Query) Address() string {
	return net.JoinHostPort(q.Group, strconv.Itoa(q.Port))
}

// Bytes returns the datagram payload.
// Lines end with a bare LF and the message ends with an empty line. Devices
// are picky about this layout, so keep it byte for byte.
func (q Query) Bytes() []byte {
	return []byte("M-SEARCH * HTTP/1.1\n" +
		"Host: " + q.Address() + "\n" +
		"Man: \"ssdp:discover\"\n" +
		"ST: " + q.SearchTarget + "\n" +
		"\n")
}
