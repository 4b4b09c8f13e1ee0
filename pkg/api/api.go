// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/horizon/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

//go:generate go tool moq -out api_moq.go . API
type API interface {
	// Run serves the registered routes until the context is done or the server fails.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds routes to the router. Routes must be registered before Run.
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
	tls    TLSConfig
}

// Config is the configuration of the API server.
type Config struct {
	ListeningAddress string    `yaml:"address" mapstructure:"address"`
	Tls              TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig configures serving over https.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
	KeyPath  string `yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks the listening address and the tls files.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListeningAddress); err != nil {
		return fmt.Errorf("invalid listening address %q: %w", c.ListeningAddress, err)
	}
	if c.Tls.Enabled && (c.Tls.CertPath == "" || c.Tls.KeyPath == "") {
		return errors.New("tls requires a certificate and a key path")
	}
	return nil
}

// Route is a handler bound to a method and a path.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// New creates a new API server
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: cfg.ListeningAddress, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
		tls:    cfg.Tls,
	}
}

// Run serves the API. It returns nil after a graceful shutdown.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cErr := make(chan error, 1)

	go func() {
		log.InfoContext(ctx, "Serving API", "addr", a.server.Addr, "tls", a.tls.Enabled)
		var err error
		if a.tls.Enabled {
			err = a.server.ListenAndServeTLS(a.tls.CertPath, a.tls.KeyPath)
		} else {
			err = a.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		cErr <- err
	}()

	select {
	case <-ctx.Done():
		log.InfoContext(ctx, "Context canceled, shutting down API")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Shutdown(sctx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-cErr:
		if err != nil {
			log.ErrorContext(ctx, "Failed to serve API", "error", err)
			return ErrServe{Addr: a.server.Addr, Err: err}
		}
		return nil
	}
}

// Shutdown gracefully shuts down the API server.
func (a *api) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown API server", "error", err)
		return fmt.Errorf("failed shutting down API server: %w", err)
	}
	return nil
}

// RegisterRoutes mounts the middlewares, the health endpoint and the given routes.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(logger.Middleware(ctx), middleware.Recoverer)
	a.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	for _, route := range routes {
		switch route.Method {
		case http.MethodGet:
			a.router.Get(route.Path, route.Handler)
		case http.MethodHead:
			a.router.Head(route.Path, route.Handler)
		case "*":
			a.router.HandleFunc(route.Path, route.Handler)
		default:
			return ErrInvalidMethod{Method: route.Method, Path: route.Path}
		}
	}
	return nil
}
