// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ Client        = (*genericClient)(nil)
	_ routeResolver = (*Resolver)(nil)
)

// Client is able to search the horizon of a target.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Search resolves the target once and searches the smallest TTL that yields
	// a definitive answer within the bounds given by opts. Nil opts means [DefaultOptions].
	Search(ctx context.Context, target Target, opts *Options) (Result, error)
}

// routeResolver resolves targets into routes.
type routeResolver interface {
	Resolve(ctx context.Context, host, service string, family Family, source string) (Route, error)
}

type genericClient struct {
	resolver routeResolver
	prober   prober
}

// NewClient returns a Client using the system resolver and kernel sockets.
func NewClient() Client {
	return &genericClient{
		resolver: NewResolver(),
		prober:   NewProber(),
	}
}

func (c *genericClient) Search(ctx context.Context, target Target, opts *Options) (Result, error) {
	if opts == nil {
		def := DefaultOptions()
		opts = &def
	}
	if err := target.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid target %s: %w", target, err)
	}
	if err := opts.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid options for target %s: %w", target, err)
	}

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("horizon.client")
	ctx, sp := tracer.Start(ctx, "Search", trace.WithAttributes(
		attribute.Stringer("horizon.target", target),
		attribute.Stringer("horizon.target.family", target.Family),
		attribute.Int("horizon.options.min_ttl", opts.MinTTL),
		attribute.Int("horizon.options.max_ttl", opts.MaxTTL),
		attribute.Stringer("horizon.options.timeout", opts.Timeout),
	))
	defer sp.End()

	route, err := c.resolver.Resolve(ctx, target.Host, target.Service, target.Family, target.Source)
	if err != nil {
		return Result{}, wrapError(ctx, err, "failed to resolve %s", target)
	}
	sp.SetAttributes(attribute.Stringer("horizon.route", route))

	s := &searcher{prober: c.prober, otelTracer: tracer, opts: *opts}
	res, err := s.run(ctx, route)
	if err != nil {
		return res, wrapError(ctx, err, "search for %s stopped", target)
	}

	logResult(ctx, res)
	return res, nil
}

// Resolve resolves host and service with the system resolver. See [Resolver.Resolve].
func Resolve(ctx context.Context, host, service string, family Family, source string) (Route, error) {
	return NewResolver().Resolve(ctx, host, service, family, source)
}

// Probe executes a single probe with kernel sockets. See [Prober.Probe].
func Probe(ctx context.Context, route Route, ttl int, wait time.Duration) Outcome {
	return NewProber().Probe(ctx, route, ttl, wait)
}
