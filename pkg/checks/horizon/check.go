// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/horizon/internal/helper"
	"github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg/checks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var _ checks.Check = (*Horizon)(nil)

const CheckName = "horizon"

func NewCheck() checks.Check {
	c := &Horizon{
		CheckBase: checks.NewCheckBase(),
		config:    Config{},
		client:    horizon.NewClient(),
		metrics:   newMetrics(),
	}
	c.tracer = otel.Tracer(c.Name())
	return c
}

// Horizon periodically searches the hop distance of its targets.
type Horizon struct {
	checks.CheckBase
	config  Config
	metrics metrics
	client  horizon.Client
	tracer  trace.Tracer
}

// result maps every target to the outcome of its last search.
type result map[string]targetResult

type targetResult struct {
	// ID identifies the search, ids sort by the start of the search.
	ID          string  `json:"id"`
	Route       string  `json:"route,omitempty"`
	Horizon     int     `json:"horizon"`
	Reached     bool    `json:"reached"`
	Unreachable bool    `json:"unreachable"`
	Probes      []probe `json:"probes"`
	Duration    float64 `json:"durationSeconds"`
	Error       string  `json:"error,omitempty"`
}

type probe struct {
	TTL     int     `json:"ttl"`
	Errno   int     `json:"errno"`
	Message string  `json:"message"`
	Elapsed float64 `json:"elapsedSeconds"`
}

// Run runs the check in a loop sending results to the provided channel
func (h *Horizon) Run(ctx context.Context, cResult chan checks.ResultDTO) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	log.InfoContext(ctx, "Starting horizon check", "interval", h.GetConfig().(*Config).Interval.String())
	for {
		select {
		case <-ctx.Done():
			log.ErrorContext(ctx, "Context canceled", "error", ctx.Err())
			return ctx.Err()
		case <-h.DoneChan:
			return nil
		case <-time.After(h.GetConfig().(*Config).Interval):
			res := h.check(ctx)
			cResult <- checks.ResultDTO{
				Name: h.Name(),
				Result: &checks.Result{
					Data:      res,
					Timestamp: time.Now(),
				},
			}
			log.DebugContext(ctx, "Successfully finished horizon check run", "targets", len(res))
		}
	}
}

// GetConfig returns a copy of the current configuration of the check
func (h *Horizon) GetConfig() checks.Runtime {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	cfg := h.config
	return &cfg
}

// check searches all targets and returns their results.
func (h *Horizon) check(ctx context.Context) result {
	log := logger.FromContext(ctx)
	ctx, span := h.tracer.Start(ctx, "horizon.check")
	defer span.End()

	cfg := h.GetConfig().(*Config)
	if len(cfg.Targets) == 0 {
		log.WarnContext(ctx, "No targets configured for horizon check")
		return result{}
	}
	span.SetAttributes(attribute.Int("horizon.targets", len(cfg.Targets)))

	var (
		mu  sync.Mutex
		res = make(result, len(cfg.Targets))
		g   errgroup.Group
	)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for _, target := range cfg.Targets {
		g.Go(func() error {
			tr := h.search(ctx, target, cfg)
			mu.Lock()
			defer mu.Unlock()
			res[target.Key()] = tr
			return nil
		})
	}
	_ = g.Wait()

	return res
}

// search searches one target. Resolution failures that may be transient are retried,
// the probes of a search never are.
func (h *Horizon) search(ctx context.Context, target horizon.Target, cfg *Config) targetResult {
	log := logger.FromContext(ctx).With("target", target.Key())
	ctx = logger.IntoContext(ctx, log)

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	var (
		res       horizon.Result
		searchErr error
	)
	err = helper.Retry(func(ctx context.Context) error {
		res, searchErr = h.client.Search(ctx, target, &cfg.Options)
		if isTransient(searchErr) {
			return searchErr
		}
		return nil
	}, cfg.retry())(ctx)
	if err != nil {
		searchErr = err
	}

	if searchErr != nil {
		log.ErrorContext(ctx, "Horizon search failed", "error", searchErr)
		trace.SpanFromContext(ctx).SetStatus(codes.Error, "horizon search failed")
		h.metrics.SetFailed(target.Key())
		return targetResult{ID: id.String(), Probes: []probe{}, Error: searchErr.Error()}
	}

	h.metrics.Set(target.Key(), res)
	return newTargetResult(id, res)
}

func newTargetResult(id uuid.UUID, res horizon.Result) targetResult {
	probes := make([]probe, 0, len(res.Steps))
	for _, step := range res.Steps {
		probes = append(probes, probe{
			TTL:     step.Outcome.TTL,
			Errno:   int(step.Outcome.Errno), // #nosec G115 // errno values are small
			Message: step.Outcome.Message,
			Elapsed: step.Outcome.ElapsedSeconds(),
		})
	}
	return targetResult{
		ID:          id.String(),
		Route:       res.Route.String(),
		Horizon:     res.Horizon,
		Reached:     res.Reached,
		Unreachable: res.Unreachable,
		Probes:      probes,
		Duration:    res.Duration.Seconds(),
	}
}

// isTransient reports whether a failed search is worth retrying.
func isTransient(err error) bool {
	return errors.Is(err, horizon.ErrUnknownHost) || errors.Is(err, horizon.ErrNoRoute)
}

// Shutdown is called once when the check is unregistered or the monitor shuts down
func (h *Horizon) Shutdown() {
	h.DoneChan <- struct{}{}
	close(h.DoneChan)
}

// UpdateConfig replaces the configuration and drops the metrics of removed targets.
func (h *Horizon) UpdateConfig(cfg checks.Runtime) error {
	c, ok := cfg.(*Config)
	if !ok {
		return checks.ErrConfigMismatch{
			Expected: CheckName,
			Current:  cfg.For(),
		}
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()
	for _, target := range h.config.Targets {
		if slices.Contains(c.Targets, target) {
			continue
		}
		var notFound checks.ErrMetricNotFound
		if err := h.metrics.Remove(target.Key()); err != nil && !errors.As(err, &notFound) {
			return err
		}
	}
	h.config = *c
	return nil
}

// Schema returns an openapi3.SchemaRef of the result type returned by the check
func (h *Horizon) Schema() (*openapi3.SchemaRef, error) {
	return checks.OpenapiFromPerfData(result{})
}

// GetMetricCollectors allows the check to provide prometheus metric collectors
func (h *Horizon) GetMetricCollectors() []prometheus.Collector {
	return h.metrics.List()
}

// Name returns the name of the check
func (h *Horizon) Name() string {
	return CheckName
}

// RemoveLabelledMetrics removes the metrics which have the passed
// target as a label
func (h *Horizon) RemoveLabelledMetrics(target string) error {
	return h.metrics.Remove(target)
}
