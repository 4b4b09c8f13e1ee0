// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// prober executes a single TTL-limited probe.
//
//go:generate go tool moq -out prober_moq.go . prober
type prober interface {
	Probe(ctx context.Context, route Route, ttl int, wait time.Duration) Outcome
}

// searcher drives the probes of one search. It owns the bounds; the prober never sees them.
type searcher struct {
	prober     prober
	otelTracer trace.Tracer
	opts       Options
}

// run narrows the bounds until they converge and returns every step taken.
//
// A timeout raises the lower bound. A local failure stops the search with a
// [ProbeSetupError]. Any other outcome is a definitive answer and lowers the upper bound. With a zero lower bound the first probe goes to TTL 1,
// since the geometric midpoint of a zero lower bound is zero.
func (s *searcher) run(ctx context.Context, route Route) (Result, error) {
	start := time.Now()
	res := Result{Route: route}
	b := s.opts.bounds()

	for !b.Converged() {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		ttl := b.Low + 1
		if b.Low > 0 {
			ttl = NextProbe(b.Low, b.High)
		}

		out := s.step(ctx, route, b, ttl)
		res.Steps = append(res.Steps, Step{Bounds: b, Outcome: out})

		if out.Local {
			res.Duration = time.Since(start)
			return res, &ProbeSetupError{Outcome: out}
		}
		if out.TimedOut() {
			b.Low = ttl
			continue
		}
		b.High = ttl
		res.Reached = true
		res.Unreachable = out.Unreachable()
	}

	if res.Reached {
		res.Horizon = b.High
	}
	res.Duration = time.Since(start)
	return res, nil
}

// step executes one probe in its own span.
func (s *searcher) step(ctx context.Context, route Route, b Bounds, ttl int) Outcome {
	ctx, span := s.otelTracer.Start(ctx, route.Dest.String(), trace.WithAttributes(
		attribute.Stringer("horizon.route.dest", route.Dest),
		attribute.Int("horizon.bounds.low", b.Low),
		attribute.Int("horizon.bounds.high", b.High),
		attribute.Int("horizon.probe.ttl", ttl),
	))
	defer span.End()

	out := s.prober.Probe(ctx, route, ttl, s.opts.Timeout)
	if out.Local || (out.Errno != 0 && !out.TimedOut() && !out.Unreachable()) {
		span.SetStatus(codes.Error, out.Message)
	}
	return out
}
