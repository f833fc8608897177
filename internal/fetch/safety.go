package fetch

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
)

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// GuardConfig configures URL admission.
type GuardConfig struct {
	// AllowedHosts restricts fetching to these domains and their subdomains.
	AllowedHosts []string
	// DenyWhenEmpty makes an empty AllowedHosts reject every host instead of
	// allowing any public one.
	DenyWhenEmpty bool
	Resolver      Resolver
}

// Guard decides which URLs may be fetched. Private, loopback and link-local
// destinations are always refused, whatever the allowlist says.
type Guard struct {
	allowed       []string
	denyWhenEmpty bool
	resolver      Resolver

	// allowPrivate lets in-package tests reach httptest servers.
	allowPrivate bool
}

// cgnat is the carrier-grade NAT range (RFC 6598), not covered by IsPrivate.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// NewGuard creates a Guard.
func NewGuard(cfg GuardConfig) *Guard {
	g := &Guard{
		denyWhenEmpty: cfg.DenyWhenEmpty,
		resolver:      cfg.Resolver,
	}
	if g.resolver == nil {
		g.resolver = net.DefaultResolver
	}
	for _, host := range cfg.AllowedHosts {
		if h := normalizeAllowedHost(host); h != "" {
			g.allowed = append(g.allowed, h)
		}
	}
	return g
}

func normalizeAllowedHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "*.")
	host = strings.Trim(host, ".")
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// Check validates rawURL and returns it parsed.
func (g *Guard) Check(ctx context.Context, rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: KindInvalidURL, Message: "invalid URL", Cause: err}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, &Error{URL: rawURL, Kind: KindUnsafeURL, Message: fmt.Sprintf("scheme %q is not allowed", u.Scheme)}
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return nil, &Error{URL: rawURL, Kind: KindInvalidURL, Message: "invalid URL: missing host"}
	}
	if u.User != nil {
		return nil, &Error{URL: rawURL, Kind: KindUnsafeURL, Message: "credentials in URL are not allowed"}
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if err := g.checkAddr(addr); err != nil {
			return nil, &Error{URL: rawURL, Kind: KindUnsafeURL, Message: err.Error()}
		}
	}

	if !g.hostAllowed(host) {
		return nil, &Error{URL: rawURL, Kind: KindUnsafeURL, Message: fmt.Sprintf("host %q is not in the allowlist", host)}
	}

	if _, err := netip.ParseAddr(host); err != nil {
		addrs, err := g.resolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, &Error{URL: rawURL, Kind: KindNetwork, Message: "failed to resolve host", Cause: err}
		}
		if len(addrs) == 0 {
			return nil, &Error{URL: rawURL, Kind: KindNetwork, Message: "host has no addresses"}
		}
		for _, ipAddr := range addrs {
			addr, ok := netip.AddrFromSlice(ipAddr.IP)
			if !ok {
				return nil, &Error{URL: rawURL, Kind: KindUnsafeURL, Message: "host resolved to an invalid address"}
			}
			if err := g.checkAddr(addr); err != nil {
				return nil, &Error{URL: rawURL, Kind: KindUnsafeURL, Message: fmt.Sprintf("host %q resolves to a non-public address: %v", host, err)}
			}
		}
	}

	u.Scheme = scheme
	u.Fragment = ""
	return u, nil
}

// hostAllowed applies the allowlist by suffix match on domain boundaries.
func (g *Guard) hostAllowed(host string) bool {
	if len(g.allowed) == 0 {
		return !g.denyWhenEmpty
	}
	for _, domain := range g.allowed {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func (g *Guard) checkAddr(addr netip.Addr) error {
	if g.allowPrivate {
		return nil
	}
	if !IsPublicAddr(addr) {
		return fmt.Errorf("address %s is not public", addr)
	}
	return nil
}

// dialControl re-checks the address actually being dialed, so a DNS answer
// that changes between Check and connect cannot reach a private address.
func (g *Guard) dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return &Error{URL: address, Kind: KindUnsafeURL, Message: "unparseable dial address", Cause: err}
	}
	if err := g.checkAddr(addr); err != nil {
		return &Error{URL: address, Kind: KindUnsafeURL, Message: err.Error()}
	}
	return nil
}

// IsPublicAddr reports whether addr is a globally routable unicast address.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified():
		return false
	}
	if addr.Is4() {
		first := addr.As4()[0]
		if first == 0 || first >= 240 || cgnat.Contains(addr) {
			return false
		}
	}
	return true
}
