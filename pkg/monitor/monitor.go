// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package monitor runs the configured checks and serves their results.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg/api"
	"github.com/telekom/horizon/pkg/checks/runtime"
	"github.com/telekom/horizon/pkg/config"
	"github.com/telekom/horizon/pkg/db"
	"github.com/telekom/horizon/pkg/monitor/metrics"
)

const shutdownTimeout = time.Second * 90

// Monitor runs the checks of the runtime configuration and serves their results.
type Monitor struct {
	// config is the startup configuration
	config *config.Config
	// db holds the latest results
	db db.DB
	// history stores every search, nil if disabled
	history *db.History
	api     api.API
	// loader loads the runtime configuration
	loader  config.Loader
	metrics metrics.Provider
	// controller manages the checks
	controller *ChecksController
	// cRuntime receives every loaded runtime configuration
	cRuntime chan runtime.Config
	// cErr receives non-recoverable errors of the components
	cErr chan error
	// cDone signals that the shutdown is complete
	cDone    chan struct{}
	shutOnce sync.Once
}

// New creates a monitor from the startup configuration. The history database is
// opened here if it is enabled.
func New(ctx context.Context, cfg *config.Config) (*Monitor, error) {
	m := metrics.New(cfg.Telemetry)
	if err := metrics.RegisterInstanceInfo(m.GetRegistry(), cfg.Name, cfg.Metadata.Labels()); err != nil {
		return nil, fmt.Errorf("failed to register instance info: %w", err)
	}

	var (
		dbase   db.DB = db.NewInMemory()
		history *db.History
	)
	if cfg.HasHistory() {
		h, err := db.NewHistory(ctx, cfg.History)
		if err != nil {
			return nil, err
		}
		dbase, history = h, h
	}

	mon := &Monitor{
		config:     cfg,
		db:         dbase,
		history:    history,
		api:        api.New(cfg.Api),
		metrics:    m,
		controller: NewChecksController(dbase, m),
		cRuntime:   make(chan runtime.Config, 1),
		cErr:       make(chan error, 1),
		cDone:      make(chan struct{}, 1),
	}
	mon.loader = config.NewLoader(cfg, mon.cRuntime)
	return mon, nil
}

// Run starts all components and reconciles the checks with every loaded runtime
// configuration. It returns [ErrFinalShutdown] once the monitor is shut down.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	if err := m.metrics.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := m.api.RegisterRoutes(ctx, m.routes()...); err != nil {
		log.ErrorContext(ctx, "Error registering routes", "error", err)
		return fmt.Errorf("failed to register routes: %w", err)
	}

	go func() {
		m.cErr <- m.loader.Run(ctx)
	}()
	go func() {
		m.cErr <- m.api.Run(ctx)
	}()
	go func() {
		m.cErr <- m.controller.Run(ctx)
	}()

	for {
		select {
		case cfg := <-m.cRuntime:
			m.controller.Reconcile(ctx, cfg)
		case <-ctx.Done():
			m.shutdown(ctx)
		case err := <-m.cErr:
			if err != nil {
				log.ErrorContext(ctx, "Non-recoverable error in monitor component", "error", err)
				m.shutdown(ctx)
			}
		case <-m.cDone:
			log.InfoContext(ctx, "Monitor was shut down")
			return ErrFinalShutdown
		}
	}
}

// shutdown stops all components once. Errors are logged.
func (m *Monitor) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(logger.IntoContext(context.Background(), log), shutdownTimeout)
	defer cancel()

	m.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down monitor")
		var sErrs ErrShutdown
		sErrs.errAPI = m.api.Shutdown(ctx)
		m.loader.Shutdown(ctx)
		m.controller.Shutdown(ctx)
		sErrs.errMetrics = m.metrics.Shutdown(ctx)
		if m.history != nil {
			sErrs.errHistory = m.history.Close()
		}

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "error", sErrs)
		}
		m.cDone <- struct{}{}
	})
}
