// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg"
	"github.com/telekom/horizon/pkg/checks"
	"github.com/telekom/horizon/pkg/checks/runtime"
	"github.com/telekom/horizon/pkg/db"
	"github.com/telekom/horizon/pkg/factory"
	"github.com/telekom/horizon/pkg/monitor/metrics"
)

// ChecksController starts, updates and stops the checks of the runtime configuration
// and stores their results.
type ChecksController struct {
	db      db.DB
	metrics metrics.Provider
	checks  runtime.Checks
	cResult chan checks.ResultDTO
	cErr    chan error
	done    chan struct{}
}

func NewChecksController(dbase db.DB, m metrics.Provider) *ChecksController {
	return &ChecksController{
		db:      dbase,
		metrics: m,
		checks:  runtime.Checks{},
		cResult: make(chan checks.ResultDTO, 8),
		cErr:    make(chan error, 1),
		done:    make(chan struct{}, 1),
	}
}

// Run stores check results until the controller is shut down or the context is done.
// A failing check is logged and keeps its last result.
func (cc *ChecksController) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	for {
		select {
		case result := <-cc.cResult:
			cc.db.Save(result)
		case err := <-cc.cErr:
			var runErr *ErrRunningCheck
			if errors.As(err, &runErr) {
				log.ErrorContext(ctx, "Check stopped with an error", "check", runErr.Check.Name(), "error", runErr.Err)
				continue
			}
			log.ErrorContext(ctx, "Check controller received an error", "error", err)
		case <-ctx.Done():
			if err := ctx.Err(); err != nil {
				log.ErrorContext(ctx, "Context canceled", "error", err)
				return fmt.Errorf("failed to run controller: %w", err)
			}
		case <-cc.done:
			log.InfoContext(ctx, "Stopping checks controller")
			return nil
		}
	}
}

// Shutdown shuts down all checks and stops the controller.
func (cc *ChecksController) Shutdown(ctx context.Context) {
	for c := range cc.checks.Iter() {
		cc.UnregisterCheck(ctx, c)
	}
	select {
	case cc.done <- struct{}{}:
	default:
	}
}

// Reconcile brings the running checks in line with the runtime configuration.
// Running checks get the new configuration, checks missing from it are stopped
// and newly configured checks are started. An invalid configuration is rejected
// as a whole and leaves the running checks untouched.
func (cc *ChecksController) Reconcile(ctx context.Context, cfg runtime.Config) {
	log := logger.FromContext(ctx)

	desired, err := factory.NewChecksFromConfig(cfg)
	if err != nil {
		log.ErrorContext(ctx, "Rejected invalid runtime configuration", "error", err)
		return
	}

	for c := range cc.checks.Iter() {
		if _, ok := desired[c.Name()]; !ok {
			cc.UnregisterCheck(ctx, c)
		}
	}

	for name, check := range desired {
		if existing, ok := cc.checks.Get(name); ok {
			if err := existing.UpdateConfig(check.GetConfig()); err != nil {
				log.ErrorContext(ctx, "Failed to update check config", "check", name, "error", err)
			}
			continue
		}

		if err := cc.RegisterCheck(ctx, check); err != nil {
			log.ErrorContext(ctx, "Failed to register check", "check", name, "error", err)
		}
	}
}

// RegisterCheck registers the metric collectors of the check and starts it.
func (cc *ChecksController) RegisterCheck(ctx context.Context, check checks.Check) error {
	log := logger.FromContext(ctx).With("check", check.Name())

	for _, collector := range check.GetMetricCollectors() {
		if err := cc.metrics.GetRegistry().Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				log.ErrorContext(ctx, "Failed to register metric collector", "error", err)
				return fmt.Errorf("failed to register collector of check %s: %w", check.Name(), err)
			}
		}
	}

	cc.checks.Add(check)
	go func() {
		if err := check.Run(ctx, cc.cResult); err != nil && !errors.Is(err, context.Canceled) {
			log.ErrorContext(ctx, "Failed to run check", "error", err)
			cc.cErr <- &ErrRunningCheck{Check: check, Err: err}
		}
	}()
	log.InfoContext(ctx, "Check registered")
	return nil
}

// UnregisterCheck stops the check and unregisters its metric collectors.
func (cc *ChecksController) UnregisterCheck(ctx context.Context, check checks.Check) {
	log := logger.FromContext(ctx).With("check", check.Name())
	for _, collector := range check.GetMetricCollectors() {
		if !cc.metrics.GetRegistry().Unregister(collector) {
			log.WarnContext(ctx, "Metric collector was not registered")
		}
	}
	check.Shutdown()
	cc.checks.Delete(check)
	log.InfoContext(ctx, "Check unregistered")
}

// GenerateCheckSpecs describes the result endpoints of the running checks.
func (cc *ChecksController) GenerateCheckSpecs(ctx context.Context) (openapi3.T, error) {
	log := logger.FromContext(ctx)
	doc := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "horizon results API",
			Description: "Latest results of the checks run by horizon",
			Version:     version(),
		},
		Paths: openapi3.NewPaths(),
	}

	for c := range cc.checks.Iter() {
		name := c.Name()
		ref, err := c.Schema()
		if err != nil {
			log.ErrorContext(ctx, "Failed to get schema of check", "check", name, "error", err)
			return openapi3.T{}, &ErrCreateOpenapiSchema{name: name, err: err}
		}

		routeDesc := fmt.Sprintf("Returns the latest result of the %s check", name)
		bodyDesc := fmt.Sprintf("Latest result of the %s check", name)
		doc.Paths.Set(resultsPath+"/"+name, &openapi3.PathItem{
			Description: name,
			Get: &openapi3.Operation{
				Description: routeDesc,
				Tags:        []string{"Results", name},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
						Value: &openapi3.Response{
							Description: &bodyDesc,
							Content:     openapi3.NewContentWithJSONSchemaRef(ref),
						},
					}),
				),
			},
		})
	}
	return doc, nil
}

// version returns the build version, or "dev" for builds without one.
func version() string {
	if pkg.Version == "" {
		return "dev"
	}
	return pkg.Version
}
