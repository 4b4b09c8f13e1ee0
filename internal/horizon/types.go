// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"slices"
	"time"

	"golang.org/x/sys/unix"
)

// Protocol represents the transport protocol used for probing.
type Protocol string

// Protocol constants for the probe.
const (
	ProtocolTCP Protocol = "tcp"
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return string(p)
	default:
		return "unknown"
	}
}

func (p Protocol) IsValid() bool {
	valid := []Protocol{ProtocolTCP}
	return slices.Contains(valid, p)
}

// number returns the IP protocol number used when opening sockets.
func (p Protocol) number() int {
	switch p {
	case ProtocolTCP:
		return unix.IPPROTO_TCP
	default:
		return 0
	}
}

// Endpoint is a single resolver answer: a concrete address of a known family.
type Endpoint struct {
	Family   Family
	Protocol Protocol
	// Addr holds the address and port. IPv6 scope ids are carried as the zone.
	Addr netip.AddrPort
}

func newEndpoint(addr netip.Addr, port uint16) Endpoint {
	addr = addr.Unmap()
	f := IPv6
	if addr.Is4() {
		f = IPv4
	}
	return Endpoint{Family: f, Protocol: ProtocolTCP, Addr: netip.AddrPortFrom(addr, port)}
}

func (e Endpoint) String() string {
	return e.Addr.String()
}

// Route is the immutable outcome of resolution. Source and Dest always share Family.
type Route struct {
	// Source is the local address probes bind to. Its port is always zero.
	Source netip.AddrPort `json:"source" yaml:"source"`
	// Dest is the destination address including the port.
	Dest netip.AddrPort `json:"dest" yaml:"dest"`
	// Family is the address family of Source and Dest.
	Family Family `json:"family" yaml:"family"`
	// Protocol is the transport protocol probes use.
	Protocol Protocol `json:"protocol" yaml:"protocol"`
}

func (r Route) String() string {
	return fmt.Sprintf("%s -> %s (%s/%s)", r.Source.Addr(), r.Dest, r.Family, r.Protocol)
}

// Outcome is the result of a single probe. Network failures are data, not errors:
// Errno is zero when the connection completed and carries the failure otherwise.
type Outcome struct {
	TTL     int           `json:"ttl" yaml:"ttl"`
	Elapsed time.Duration `json:"-" yaml:"-"`
	Errno   unix.Errno    `json:"errno" yaml:"errno"`
	Message string        `json:"message" yaml:"message"`
	// Local is set when Errno comes from the local socket layer instead of the
	// network, e.g. a source address that cannot be bound. It says nothing about
	// the path to the destination.
	Local bool `json:"local,omitempty" yaml:"local,omitempty"`
}

func newOutcome(ttl int, elapsed time.Duration, errno unix.Errno) Outcome {
	return Outcome{
		TTL:     ttl,
		Elapsed: elapsed,
		Errno:   errno,
		Message: fmt.Sprintf("TTL %2d: %s after %.3f s", ttl, describe(errno), elapsed.Seconds()),
	}
}

// localOutcome is an outcome whose errno was raised by the local socket layer.
func localOutcome(ttl int, elapsed time.Duration, errno unix.Errno) Outcome {
	out := newOutcome(ttl, elapsed, errno)
	out.Local = true
	return out
}

// ElapsedSeconds returns the time between connect and the outcome in seconds.
func (o Outcome) ElapsedSeconds() float64 {
	return o.Elapsed.Seconds()
}

// Err returns the errno as an error, or nil on success.
func (o Outcome) Err() error {
	if o.Errno == 0 {
		return nil
	}
	return o.Errno
}

// TimedOut reports whether the probe ran out of its wait budget.
func (o Outcome) TimedOut() bool {
	return o.Errno == unix.ETIMEDOUT
}

// Unreachable reports whether the stack answered with host-unreachable.
func (o Outcome) Unreachable() bool {
	return IsUnreachable(o.Errno)
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	return json.Marshal(&struct {
		ElapsedSeconds float64 `json:"elapsedSeconds"`
		Error          string  `json:"error"`
		alias
	}{
		ElapsedSeconds: o.ElapsedSeconds(),
		Error:          describe(o.Errno),
		alias:          alias(o),
	})
}

func (o Outcome) String() string {
	return o.Message
}

// describe renders an errno the way the platform does, with a readable success case.
func describe(errno unix.Errno) string {
	if errno == 0 {
		return "Success"
	}
	return errno.Error()
}

// Bounds is the search interval. Low is the largest TTL known to time out
// (zero when none is known), High is the smallest TTL known to produce a
// definitive answer or the configured ceiling.
type Bounds struct {
	Low  int `json:"low" yaml:"low"`
	High int `json:"high" yaml:"high"`
}

// Validate checks the invariant 0 <= Low < High.
func (b Bounds) Validate() error {
	if b.Low < 0 {
		return fmt.Errorf("invalid bounds [%d, %d): low must not be negative", b.Low, b.High)
	}
	if b.Low >= b.High {
		return fmt.Errorf("invalid bounds [%d, %d): low must be below high", b.Low, b.High)
	}
	return nil
}

// Converged reports whether no TTL is left between the bounds.
func (b Bounds) Converged() bool {
	return b.High-b.Low <= 1
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d, %d)", b.Low, b.High)
}

// Step is one probe of a search together with the bounds it was chosen from.
type Step struct {
	Bounds  Bounds  `json:"bounds" yaml:"bounds"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
}

// Result is the outcome of a complete search.
type Result struct {
	// Route is the address pair all probes used.
	Route Route `json:"route" yaml:"route"`
	// Horizon is the smallest TTL that produced a definitive answer.
	// It is zero when no probe within the ceiling did.
	Horizon int `json:"horizon" yaml:"horizon"`
	// Reached is true when Horizon is known.
	Reached bool `json:"reached" yaml:"reached"`
	// Unreachable is true when the answer at Horizon was host-unreachable.
	Unreachable bool `json:"unreachable" yaml:"unreachable"`
	// Steps lists every probe in the order it was sent.
	Steps []Step `json:"steps" yaml:"steps"`
	// Duration is the wall time of the whole search.
	Duration time.Duration `json:"-" yaml:"-"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(&struct {
		Duration string `json:"duration"`
		alias
	}{
		Duration: r.Duration.String(),
		alias:    alias(r),
	})
}

func (r Result) String() string {
	switch {
	case !r.Reached:
		return fmt.Sprintf("%s not reached after %d probes", r.Route.Dest, len(r.Steps))
	case r.Unreachable:
		return fmt.Sprintf("%s unreachable at %d hops after %d probes", r.Route.Dest, r.Horizon, len(r.Steps))
	default:
		return fmt.Sprintf("%s reached at %d hops after %d probes", r.Route.Dest, r.Horizon, len(r.Steps))
	}
}
