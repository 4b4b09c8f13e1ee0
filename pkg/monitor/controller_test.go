// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ihorizon "github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/pkg/checks"
	"github.com/telekom/horizon/pkg/checks/horizon"
	"github.com/telekom/horizon/pkg/checks/runtime"
	"github.com/telekom/horizon/pkg/db"
	"github.com/telekom/horizon/pkg/monitor/metrics"
)

func horizonConfig(hosts ...string) *horizon.Config {
	cfg := &horizon.Config{Interval: time.Hour, Options: ihorizon.DefaultOptions()}
	for _, h := range hosts {
		cfg.Targets = append(cfg.Targets, ihorizon.Target{Host: h, Service: "443"})
	}
	return cfg
}

// blockingCheck returns a check mock whose Run blocks until it is shut down.
func blockingCheck(name string, collectors ...prometheus.Collector) *checks.CheckMock {
	done := make(chan struct{})
	return &checks.CheckMock{
		NameFunc:                func() string { return name },
		GetMetricCollectorsFunc: func() []prometheus.Collector { return collectors },
		RunFunc: func(ctx context.Context, _ chan checks.ResultDTO) error {
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		ShutdownFunc: func() { close(done) },
		SchemaFunc: func() (*openapi3.SchemaRef, error) {
			return checks.OpenapiFromPerfData(map[string]int{})
		},
	}
}

func TestChecksController_Run_savesResults(t *testing.T) {
	store := db.NewInMemory()
	cc := NewChecksController(store, metrics.New(metrics.Config{}))

	cErr := make(chan error, 1)
	go func() { cErr <- cc.Run(t.Context()) }()

	now := time.Now()
	cc.cResult <- checks.ResultDTO{Name: "horizon", Result: &checks.Result{Data: "data", Timestamp: now}}
	require.Eventually(t, func() bool {
		_, ok := store.Get("horizon")
		return ok
	}, time.Second, 5*time.Millisecond)

	cc.cErr <- &ErrRunningCheck{Check: blockingCheck("broken"), Err: errors.New("boom")}
	cc.cResult <- checks.ResultDTO{Name: "other", Result: &checks.Result{Data: 1, Timestamp: now}}
	require.Eventually(t, func() bool {
		_, ok := store.Get("other")
		return ok
	}, time.Second, 5*time.Millisecond, "a failing check must not stop the controller")

	cc.Shutdown(t.Context())
	assert.NoError(t, <-cErr)
}

func TestChecksController_Run_contextCanceled(t *testing.T) {
	cc := NewChecksController(db.NewInMemory(), metrics.New(metrics.Config{}))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, cc.Run(ctx), context.Canceled)
}

func TestChecksController_RegisterCheck(t *testing.T) {
	m := metrics.New(metrics.Config{})
	cc := NewChecksController(db.NewInMemory(), m)
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_check_gauge"})
	check := blockingCheck("test", gauge)

	require.NoError(t, cc.RegisterCheck(t.Context(), check))
	assert.Equal(t, 1, cc.checks.Len())
	require.Eventually(t, func() bool { return len(check.RunCalls()) == 1 }, time.Second, 5*time.Millisecond)

	// registering the same collector twice is tolerated
	require.NoError(t, cc.RegisterCheck(t.Context(), blockingCheck("test", gauge)))

	cc.UnregisterCheck(t.Context(), check)
	assert.Zero(t, cc.checks.Len())
	assert.Len(t, check.ShutdownCalls(), 1)
	assert.False(t, m.GetRegistry().Unregister(gauge), "collector must be unregistered")
}

func TestChecksController_RegisterCheck_collectorConflict(t *testing.T) {
	m := metrics.New(metrics.Config{})
	cc := NewChecksController(db.NewInMemory(), m)
	require.NoError(t, m.GetRegistry().Register(prometheus.NewCounter(prometheus.CounterOpts{Name: "conflict", Help: "a"})))

	check := blockingCheck("test", prometheus.NewGauge(prometheus.GaugeOpts{Name: "conflict", Help: "b"}))
	assert.Error(t, cc.RegisterCheck(t.Context(), check))
	assert.Zero(t, cc.checks.Len())
	assert.Empty(t, check.RunCalls())
}

func TestChecksController_Reconcile(t *testing.T) {
	m := metrics.New(metrics.Config{})
	cc := NewChecksController(db.NewInMemory(), m)
	ctx := t.Context()

	cc.Reconcile(ctx, runtime.Config{Horizon: horizonConfig("a.example")})
	check, ok := cc.checks.Get(horizon.CheckName)
	require.True(t, ok)
	assert.Equal(t, horizonConfig("a.example"), check.GetConfig())

	cc.Reconcile(ctx, runtime.Config{Horizon: horizonConfig("a.example", "b.example")})
	updated, ok := cc.checks.Get(horizon.CheckName)
	require.True(t, ok)
	assert.Same(t, check, updated, "a running check is updated, not replaced")
	assert.Equal(t, horizonConfig("a.example", "b.example"), updated.GetConfig())

	cc.Reconcile(ctx, runtime.Config{})
	assert.Zero(t, cc.checks.Len())
	for _, c := range check.GetMetricCollectors() {
		assert.False(t, m.GetRegistry().Unregister(c))
	}
}

func TestChecksController_Reconcile_invalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *horizon.Config)
	}{
		{name: "zero interval", mutate: func(cfg *horizon.Config) { cfg.Interval = 0 }},
		{name: "max ttl below min ttl", mutate: func(cfg *horizon.Config) { cfg.MinTTL, cfg.MaxTTL = 10, 5 }},
		{name: "duplicate targets", mutate: func(cfg *horizon.Config) { cfg.Targets = append(cfg.Targets, cfg.Targets[0]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := NewChecksController(db.NewInMemory(), metrics.New(metrics.Config{}))
			cfg := horizonConfig("a.example")
			tt.mutate(cfg)

			cc.Reconcile(t.Context(), runtime.Config{Horizon: cfg})
			assert.Zero(t, cc.checks.Len())
		})
	}
}

func TestChecksController_Reconcile_invalidUpdateKeepsRunningCheck(t *testing.T) {
	cc := NewChecksController(db.NewInMemory(), metrics.New(metrics.Config{}))
	t.Cleanup(func() { cc.Shutdown(context.Background()) })
	ctx := t.Context()

	cc.Reconcile(ctx, runtime.Config{Horizon: horizonConfig("a.example")})
	check, ok := cc.checks.Get(horizon.CheckName)
	require.True(t, ok)

	invalid := horizonConfig("a.example", "b.example")
	invalid.Interval = 0
	cc.Reconcile(ctx, runtime.Config{Horizon: invalid})

	running, ok := cc.checks.Get(horizon.CheckName)
	require.True(t, ok)
	assert.Same(t, check, running)
	assert.Equal(t, horizonConfig("a.example"), running.GetConfig())
}

func TestChecksController_GenerateCheckSpecs(t *testing.T) {
	cc := NewChecksController(db.NewInMemory(), metrics.New(metrics.Config{}))
	cc.Reconcile(t.Context(), runtime.Config{Horizon: horizonConfig("a.example")})
	t.Cleanup(func() { cc.Shutdown(context.Background()) })

	doc, err := cc.GenerateCheckSpecs(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", doc.OpenAPI)

	item := doc.Paths.Value(resultsPath + "/" + horizon.CheckName)
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	ok := item.Get.Responses.Status(200)
	require.NotNil(t, ok)
	schema := ok.Value.Content.Get("application/json").Schema.Value
	assert.Contains(t, schema.Properties, "data")
	assert.Contains(t, schema.Properties, "timestamp")
}

func TestChecksController_GenerateCheckSpecs_schemaError(t *testing.T) {
	cc := NewChecksController(db.NewInMemory(), metrics.New(metrics.Config{}))
	check := blockingCheck("broken")
	check.SchemaFunc = func() (*openapi3.SchemaRef, error) { return nil, errors.New("no schema") }
	cc.checks.Add(check)

	_, err := cc.GenerateCheckSpecs(t.Context())
	var schemaErr *ErrCreateOpenapiSchema
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "broken", schemaErr.name)
}
