package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrForbiddenAddress is returned when a URL resolves to an address outside
// the public internet, such as loopback, private ranges or cloud metadata.
var ErrForbiddenAddress = errors.New("address is not publicly routable")

// Ranges that are global unicast but still not the open internet.
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
	netip.MustParsePrefix("64:ff9b::/96"),  // NAT64
	netip.MustParsePrefix("2001:db8::/32"), // documentation
}

func checkPublicAddr(addr netip.Addr) error {
	addr = addr.Unmap()
	if !addr.IsValid() || !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return fmt.Errorf("%s: %w", addr, ErrForbiddenAddress)
	}
	for _, p := range nonPublicPrefixes {
		if p.Contains(addr) {
			return fmt.Errorf("%s: %w", addr, ErrForbiddenAddress)
		}
	}
	return nil
}

// publicOnly runs after DNS resolution and before connecting, so it also
// covers redirects and hostnames that resolve to internal addresses.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%s: %w", host, ErrForbiddenAddress)
	}
	return checkPublicAddr(addr)
}

func newHTTPClient(opts *Options) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.AllowPrivateNetworks {
		dialer.Control = publicOnly
		// A proxy would make the dialer see the proxy's address instead.
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: opts.Timeout, Transport: transport}
}
