// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package framework runs a complete horizon monitor for end-to-end tests.
package framework

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/pkg/api"
	"github.com/telekom/horizon/pkg/config"
	"github.com/telekom/horizon/pkg/monitor"
)

const checksFile = "checks.yaml"

// E2E is an end-to-end test.
type E2E struct {
	config config.Config
	t      *testing.T

	interval time.Duration
	options  horizon.Options
	targets  []horizon.Target
	buf      bytes.Buffer

	server *http.Server

	running int32
}

// NewE2E creates an end-to-end test with a file loader in a temporary directory
// and the api listening on a free loopback port.
func NewE2E(t *testing.T) *E2E {
	t.Helper()
	return &E2E{
		t: t,
		config: config.Config{
			Name: "horizon.e2e.local",
			Loader: config.LoaderConfig{
				Type:     config.LoaderFile,
				Interval: time.Second,
				File:     config.FileLoaderConfig{Path: filepath.Join(t.TempDir(), checksFile)},
			},
			Api: api.Config{ListeningAddress: freeAddress(t)},
		},
		interval: time.Second,
		options:  horizon.DefaultOptions(),
	}
}

// WithTargets sets the targets of the horizon check.
func (e *E2E) WithTargets(targets ...horizon.Target) *E2E {
	e.targets = targets
	e.encodeChecks()
	return e
}

// WithOptions sets the search options of the horizon check.
func (e *E2E) WithOptions(opts horizon.Options) *E2E {
	e.options = opts
	e.encodeChecks()
	return e
}

// WithHistory enables the search history in the test's temporary directory.
func (e *E2E) WithHistory() *E2E {
	e.config.History.Path = filepath.Join(e.t.TempDir(), "history.db")
	return e
}

// UpdateTargets replaces the targets of a running test.
func (e *E2E) UpdateTargets(targets ...horizon.Target) *E2E {
	e.targets = targets
	e.encodeChecks()

	// The file is only read if no remote server is used.
	if e.server == nil {
		if err := e.writeCheckConfig(); err != nil {
			e.t.Fatalf("Failed to write check config: %v", err)
		}
	}
	return e
}

// URL returns the url of the given api path.
func (e *E2E) URL(path string) string {
	return "http://" + e.config.Api.ListeningAddress + path
}

// Run starts the test. If a remote server is configured it runs it in a goroutine.
func (e *E2E) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		e.t.Fatal("E2E.Run must be called once")
	}

	if e.server != nil {
		go func() {
			if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.t.Errorf("Failed to start server: %v", err)
			}
		}()
		defer func() {
			if err := e.server.Shutdown(context.Background()); err != nil {
				e.t.Errorf("Failed to shutdown server: %v", err)
			}
		}()
	} else {
		if err := e.writeCheckConfig(); err != nil {
			return err
		}
	}

	if err := e.config.Validate(ctx); err != nil {
		return fmt.Errorf("invalid e2e config: %w", err)
	}
	m, err := monitor.New(ctx, &e.config)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	return m.Run(ctx)
}

// AwaitAll waits for the api to be ready, the loader to load the configuration
// and one round of the horizon check to finish.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitAll() *E2E {
	e.t.Helper()
	const failureTimeout = 5 * time.Second
	return e.AwaitStartup(e.URL("/healthz"), failureTimeout).
		AwaitLoader().
		AwaitChecks()
}

// AwaitStartup waits for the provided URL to be ready.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitStartup(u string, failureTimeout time.Duration) *E2E {
	e.t.Helper()
	const backoff = 100 * time.Millisecond

	// Initial delay to allow the server to start.
	<-time.After(backoff)
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitStartup must be called after E2E.Run")
	}

	deadline := time.Now().Add(failureTimeout)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, http.NoBody)
		if err != nil {
			e.t.Fatalf("Failed to create request: %v", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return e
			}
		}

		<-time.After(backoff)
	}

	e.t.Fatalf("%s did not become ready within %v", u, failureTimeout)
	return e
}

// AwaitLoader waits for the loader to reload the configuration.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitLoader() *E2E {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitLoader must be called after E2E.Run")
	}

	e.t.Logf("Waiting %s for loader to reload configuration", e.config.Loader.Interval)
	<-time.After(e.config.Loader.Interval)
	return e
}

// AwaitChecks waits for at least one round of the horizon check.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitChecks() *E2E {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitChecks must be called after E2E.Run")
	}

	wait := max(5*time.Second, 2*e.interval)
	e.t.Logf("Waiting %s for checks to be executed", wait)
	<-time.After(wait)
	return e
}

// WithRemote serves the check config over http and switches the loader to it.
func (e *E2E) WithRemote() *E2E {
	addr := freeAddress(e.t)
	e.server = &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(e.serveConfig),
		ReadHeaderTimeout: 3 * time.Second,
	}
	e.config.Loader.Type = config.LoaderHttp
	e.config.Loader.Http = config.HttpLoaderConfig{Url: "http://" + addr + "/" + checksFile, Timeout: time.Second}
	return e
}

// encodeChecks renders the runtime configuration of the horizon check.
func (e *E2E) encodeChecks() {
	e.t.Helper()
	type check struct {
		Targets  []horizon.Target `yaml:"targets"`
		Interval time.Duration    `yaml:"interval"`
		Options  horizon.Options  `yaml:",inline"`
	}
	doc := map[string]check{"horizon": {Targets: e.targets, Interval: e.interval, Options: e.options}}

	e.buf.Reset()
	if err := yaml.NewEncoder(&e.buf).Encode(doc); err != nil {
		e.t.Fatalf("Failed to encode check config: %v", err)
	}
}

// writeCheckConfig writes the check config to the file the loader reads.
func (e *E2E) writeCheckConfig() error {
	path := e.config.Loader.File.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %q: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, e.buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// isRunning returns true if the test is running.
func (e *E2E) isRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}

// serveConfig serves the check config over HTTP as text/yaml.
func (e *E2E) serveConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(e.buf.Bytes()); err != nil {
		e.t.Errorf("Failed to write response: %v", err)
	}
}

// freeAddress returns a loopback address with a port that is free right now.
func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().String()
}
