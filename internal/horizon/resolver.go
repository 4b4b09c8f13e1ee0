// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"

	"golang.org/x/net/idna"
	"golang.org/x/sys/unix"
)

// lookuper is the part of [net.Resolver] used for name and service resolution.
//
//go:generate go tool moq -out lookuper_moq.go . lookuper
type lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupPort(ctx context.Context, network, service string) (int, error)
}

var _ lookuper = (*net.Resolver)(nil)

// Resolver turns a host, a service and an optional source into a [Route].
type Resolver struct {
	lookup  lookuper
	sockets sockets
	// addrConfig reports whether the host has a usable IPv4 and IPv6 configuration.
	addrConfig func() (v4, v6 bool)
}

// NewResolver returns a Resolver backed by the system resolver and the kernel routing table.
func NewResolver() *Resolver {
	return &Resolver{
		lookup:     net.DefaultResolver,
		sockets:    sysSockets{},
		addrConfig: systemAddrConfig,
	}
}

// Resolve picks the destination address of host and the local address probes will use.
//
// Without a source, every destination candidate is tried in resolver order and the first one
// the kernel has a route for wins. With a source, every destination/source pair of the same
// family is tried. No packet is sent: connecting a datagram socket only selects a route.
func (r *Resolver) Resolve(ctx context.Context, host, service string, family Family, source string) (Route, error) {
	if !family.Valid() {
		return Route{}, fmt.Errorf("%w: %d", ErrInvalidFamily, int(family))
	}

	dests, err := r.addrinfo(ctx, host, service, family, true)
	if err != nil {
		return Route{}, err
	}

	if source == "" {
		return r.routeTo(dests, host)
	}

	// A source names a local address, so its answers are not filtered by the
	// families the host has configured.
	sources, err := r.addrinfo(ctx, source, "0", family, false)
	if err != nil {
		return Route{}, err
	}
	return r.routeBetween(dests, sources, host, source)
}

// addrinfo resolves host and service into endpoints honoring the family constraint.
// With addrconfig set, resolver answers of families the host has no address for are dropped.
// A failing service is reported before a failing host, so a mistyped port is not
// mistaken for a mistyped host.
func (r *Resolver) addrinfo(ctx context.Context, host, service string, family Family, addrconfig bool) ([]Endpoint, error) {
	port, err := r.port(ctx, service)
	if err != nil {
		return nil, &UnknownServiceError{Service: service, Err: err}
	}

	addrs, err := r.hosts(ctx, host, family, addrconfig)
	if err != nil {
		return nil, &UnknownHostError{Host: host, Err: err}
	}

	endpoints := make([]Endpoint, 0, len(addrs))
	for _, addr := range addrs {
		ep := newEndpoint(addr, port)
		if family.accepts(ep.Family) {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) == 0 {
		return nil, &UnknownHostError{Host: host, Err: fmt.Errorf("no %s address", family)}
	}
	return endpoints, nil
}

// port resolves a service. Numeric services never reach the services database.
func (r *Resolver) port(ctx context.Context, service string) (uint16, error) {
	if service == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(service); err == nil {
		if n < 0 || n > 65535 {
			return 0, fmt.Errorf("port %d out of range", n)
		}
		return uint16(n), nil // #nosec G115 // range checked above
	}

	n, err := r.lookup.LookupPort(ctx, "tcp", service)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil // #nosec G115 // the resolver only returns valid ports
}

// hosts resolves host into addresses. Address literals never reach the name resolver.
func (r *Resolver) hosts(ctx context.Context, host string, family Family, addrconfig bool) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		ep := newEndpoint(addr, 0)
		if !family.accepts(ep.Family) {
			return nil, fmt.Errorf("%s is not an %s address", host, family)
		}
		return []netip.Addr{addr}, nil
	}

	name, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host name: %w", err)
	}

	addrs, err := r.lookup.LookupNetIP(ctx, family.network(), name)
	if err != nil {
		return nil, err
	}
	if !addrconfig {
		return addrs, nil
	}
	return r.filterConfigured(addrs), nil
}

// filterConfigured drops answers of a family the host has no usable address for.
// When neither family is configured nothing is dropped.
func (r *Resolver) filterConfigured(addrs []netip.Addr) []netip.Addr {
	v4, v6 := r.addrConfig()
	if !v4 && !v6 {
		return addrs
	}

	filtered := make([]netip.Addr, 0, len(addrs))
	for _, addr := range addrs {
		addr = addr.Unmap()
		if (addr.Is4() && v4) || (addr.Is6() && v6) {
			filtered = append(filtered, addr)
		}
	}
	return filtered
}

// routeTo picks the first destination the kernel can route to.
func (r *Resolver) routeTo(dests []Endpoint, host string) (Route, error) {
	var errs []error
	for _, dest := range dests {
		local, _, err := r.connectDatagram(dest.Family, netip.AddrPort{}, dest.Addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return newRoute(local, dest), nil
	}
	return Route{}, &NoRouteError{Host: host, Err: errors.Join(errs...)}
}

// routeBetween picks the first destination/source pair of matching family that can be
// bound and connected. The counters distinguish the three ways this can fail.
func (r *Resolver) routeBetween(dests, sources []Endpoint, host, source string) (Route, error) {
	var (
		tried, binds int
		errs         []error
	)
	for _, dest := range dests {
		for _, src := range sources {
			if dest.Family != src.Family {
				continue
			}
			tried++
			local, bound, err := r.connectDatagram(dest.Family, src.Addr, dest.Addr)
			if bound {
				binds++
			}
			if err != nil {
				errs = append(errs, err)
				continue
			}
			return newRoute(local, dest), nil
		}
	}

	switch {
	case tried == 0:
		return Route{}, &IncompatibleFamilyError{Host: host, Source: source}
	case binds == 0:
		return Route{}, &CannotBindError{Source: source, Err: errors.Join(errs...)}
	default:
		return Route{}, &NoRouteError{Host: host, Source: source, Err: errors.Join(errs...)}
	}
}

// connectDatagram connects a datagram socket to dst, optionally bound to src,
// and returns the local address the kernel selected.
// bound reports whether src was bound successfully.
func (r *Resolver) connectDatagram(family Family, src, dst netip.AddrPort) (local netip.AddrPort, bound bool, err error) {
	fd, err := r.sockets.Socket(family.domain(), unix.SOCK_DGRAM, 0)
	if err != nil {
		return local, false, os.NewSyscallError("socket", err)
	}
	defer func() { _ = r.sockets.Close(fd) }()

	if src.IsValid() {
		sa, err := toSockaddr(src)
		if err != nil {
			return local, false, fmt.Errorf("%w: %w", errBind, err)
		}
		if err := r.sockets.Bind(fd, sa); err != nil {
			return local, false, fmt.Errorf("%w: %w", errBind, os.NewSyscallError("bind", err))
		}
	}

	sa, err := toSockaddr(dst)
	if err != nil {
		return local, true, err
	}
	if err := r.sockets.Connect(fd, sa); err != nil {
		return local, true, os.NewSyscallError("connect", err)
	}

	lsa, err := r.sockets.Getsockname(fd)
	if err != nil {
		return local, true, os.NewSyscallError("getsockname", err)
	}
	return fromSockaddr(lsa), true, nil
}

// newRoute bundles the chosen pair. Only the local address matters, so the
// ephemeral port picked during selection is dropped.
func newRoute(local netip.AddrPort, dest Endpoint) Route {
	return Route{
		Source:   netip.AddrPortFrom(local.Addr(), 0),
		Dest:     dest.Addr,
		Family:   dest.Family,
		Protocol: dest.Protocol,
	}
}

// systemAddrConfig reports which families have a non-loopback address configured.
func systemAddrConfig() (v4, v6 bool) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false, false
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ipnet.IP.To4() != nil {
			v4 = true
		} else if !ipnet.IP.IsLinkLocalUnicast() {
			v6 = true
		}
	}
	return v4, v6
}
