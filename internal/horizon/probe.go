// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telekom/horizon/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"
)

var _ prober = (*Prober)(nil)

// Prober executes single TTL-limited TCP connection attempts.
// A Prober holds no per-probe state and may be used concurrently.
type Prober struct {
	sockets sockets
	now     func() time.Time
}

// NewProber returns a Prober that uses the kernel's sockets.
func NewProber() *Prober {
	return &Prober{
		sockets: sysSockets{},
		now:     time.Now,
	}
}

// Probe opens one socket bound to the route's source, limits its hop count to ttl
// and connects to the route's destination, waiting at most wait for the outcome.
//
// Network failures are returned in the [Outcome], never as errors. Failures of the
// local socket layer are returned the same way with [Outcome.Local] set. The socket is
// closed before Probe returns. Probe panics if the route has no concrete family,
// which resolution rules out.
func (p *Prober) Probe(ctx context.Context, route Route, ttl int, wait time.Duration) Outcome {
	out := p.probe(route, ttl, wait)

	log := logger.FromContext(ctx)
	log.DebugContext(ctx, out.Message, "dest", route.Dest, "ttl", ttl, "errno", int(out.Errno))
	trace.SpanFromContext(ctx).AddEvent("TTL probe finished", trace.WithAttributes(
		attribute.Int("horizon.probe.ttl", ttl),
		attribute.Int("horizon.probe.errno", int(out.Errno)),
		attribute.Float64("horizon.probe.elapsed_seconds", out.ElapsedSeconds()),
	))
	return out
}

func (p *Prober) probe(route Route, ttl int, wait time.Duration) Outcome {
	level, opt := hopLimitOption(route.Family)

	fd, err := p.sockets.Socket(route.Family.domain(), unix.SOCK_STREAM, route.Protocol.number())
	if err != nil {
		return localOutcome(ttl, 0, errnoOf(err))
	}
	defer func() { _ = p.sockets.Close(fd) }()

	if err := p.prepare(fd, route, level, opt, ttl); err != nil {
		return localOutcome(ttl, 0, errnoOf(err))
	}

	dest, err := toSockaddr(route.Dest)
	if err != nil {
		return localOutcome(ttl, 0, errnoOf(err))
	}

	start := p.now()
	err = p.sockets.Connect(fd, dest)
	switch {
	// The connection completed right away, typical for local destinations.
	case err == nil:
		return newOutcome(ttl, p.now().Sub(start), 0)
	// The connection continues in the background, an interrupted
	// connect included.
	case errors.Is(err, unix.EINPROGRESS), errors.Is(err, unix.EINTR):
		return p.await(fd, ttl, start, wait)
	default:
		return newOutcome(ttl, p.now().Sub(start), errnoOf(err))
	}
}

// prepare binds the socket to the route's source, makes it non-blocking and sets the hop limit.
func (p *Prober) prepare(fd int, route Route, level, opt, ttl int) error {
	src, err := toSockaddr(route.Source)
	if err != nil {
		return err
	}
	if err := p.sockets.Bind(fd, src); err != nil {
		return err
	}
	if err := p.sockets.SetNonblock(fd, true); err != nil {
		return err
	}
	return p.sockets.SetsockoptInt(fd, level, opt, ttl)
}

// await waits for a pending connect until it resolves or the budget starting at start runs out.
// Every wait gets the remaining budget recomputed from the clock, so interruptions never
// extend the total wait beyond start+budget.
func (p *Prober) await(fd, ttl int, start time.Time, budget time.Duration) Outcome {
	deadline := start.Add(budget)
	now := start
	for {
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return newOutcome(ttl, now.Sub(start), unix.ETIMEDOUT)
		}

		ready, err := p.sockets.WaitWritable(fd, remaining)
		switch {
		case errors.Is(err, unix.EINTR):
		case err != nil:
			return localOutcome(ttl, p.now().Sub(start), errnoOf(err))
		case ready:
			elapsed := p.now().Sub(start)
			soErr, err := p.sockets.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
			if err != nil {
				return localOutcome(ttl, elapsed, errnoOf(err))
			}
			return newOutcome(ttl, elapsed, unix.Errno(soErr)) // #nosec G115 // SO_ERROR holds an errno
		}
		now = p.now()
	}
}

// hopLimitOption returns the socket option limiting the hop count for family f.
func hopLimitOption(f Family) (level, opt int) {
	switch f {
	case IPv4:
		return unix.IPPROTO_IP, unix.IP_TTL
	case IPv6:
		return unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS
	default:
		panic(fmt.Sprintf("horizon: impossible address family %v", f))
	}
}
