package opengraph

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when a page resolves to an address the
// scraper refuses to contact: loopback, private, link-local and similar.
var ErrBlockedAddress = errors.New("opengraph: destination address not allowed")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598), which
// netip does not classify as private.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// publicClient returns an http.Client whose every connection, redirects
// included, is checked after DNS resolution.
func publicClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   publicOnly,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// With a proxy the dialed address is the proxy, not the page.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{Timeout: timeout, Transport: transport}
}

// publicOnly is a net.Dialer Control hook. address is already resolved to
// ip:port when it runs.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}
