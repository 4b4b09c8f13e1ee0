// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/telekom/horizon/internal/helper"
	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg/checks/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

var _ Loader = (*HttpLoader)(nil)

// HttpLoader fetches the runtime configuration from a remote endpoint.
type HttpLoader struct {
	config   LoaderConfig
	cRuntime chan<- runtime.Config
	client   *http.Client
	tracer   trace.Tracer
	done     chan struct{}
}

func NewHttpLoader(cfg *Config, cRuntime chan<- runtime.Config) *HttpLoader {
	return &HttpLoader{
		config:   cfg.Loader,
		cRuntime: cRuntime,
		client:   &http.Client{Timeout: cfg.Loader.Http.Timeout},
		tracer:   otel.Tracer("loader.http"),
		done:     make(chan struct{}, 1),
	}
}

// Run fetches the configuration once and then again every loader interval.
// Failed fetches are retried as configured. An interval of 0 fetches only once.
func (hl *HttpLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	var cfg *runtime.Config
	getConfigRetry := helper.Retry(func(ctx context.Context) (err error) {
		cfg, err = hl.getRuntimeConfig(ctx)
		return err
	}, hl.config.Http.RetryCfg)

	if err := getConfigRetry(ctx); err != nil {
		log.WarnContext(ctx, "Could not get remote runtime configuration", "error", err)
		if hl.config.Interval == 0 {
			return fmt.Errorf("could not get remote runtime configuration: %w", err)
		}
	} else {
		log.InfoContext(ctx, "Successfully got remote runtime configuration")
		hl.cRuntime <- *cfg
	}

	if hl.config.Interval == 0 {
		log.InfoContext(ctx, "HTTP loader disabled")
		return nil
	}

	tick := time.NewTicker(hl.config.Interval)
	defer tick.Stop()

	for {
		select {
		case <-hl.done:
			log.InfoContext(ctx, "HTTP loader terminated")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if err := getConfigRetry(ctx); err != nil {
				log.WarnContext(ctx, "Could not get remote runtime configuration", "error", err)
				continue
			}
			log.DebugContext(ctx, "Successfully got remote runtime configuration")
			hl.cRuntime <- *cfg
		}
	}
}

// getRuntimeConfig fetches and parses the remote configuration.
func (hl *HttpLoader) getRuntimeConfig(ctx context.Context) (*runtime.Config, error) {
	log := logger.FromContext(ctx).With("url", hl.config.Http.Url)
	ctx, span := hl.tracer.Start(ctx, "loader.http.get", trace.WithAttributes(
		attribute.String("url", hl.config.Http.Url),
	))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hl.config.Http.Url, http.NoBody)
	if err != nil {
		log.ErrorContext(ctx, "Could not create http GET request", "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if hl.config.Http.Token != "" {
		req.Header.Set("Authorization", "Bearer "+hl.config.Http.Token)
	}

	res, err := hl.client.Do(req) //nolint:bodyclose // closed in defer
	if err != nil {
		log.ErrorContext(ctx, "Http get request failed", "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			log.ErrorContext(ctx, "Failed to close response body", "error", cerr)
		}
	}()

	if res.StatusCode != http.StatusOK {
		log.ErrorContext(ctx, "Http get request failed", "status", res.Status)
		span.SetStatus(codes.Error, res.Status)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
	}

	var cfg runtime.Config
	if err := yaml.NewDecoder(res.Body).Decode(&cfg); err != nil {
		log.ErrorContext(ctx, "Could not unmarshal response", "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("could not unmarshal runtime configuration: %w", err)
	}
	span.SetStatus(codes.Ok, "runtime configuration loaded")
	return &cfg, nil
}

func (hl *HttpLoader) Shutdown(ctx context.Context) {
	select {
	case hl.done <- struct{}{}:
		logger.FromContext(ctx).DebugContext(ctx, "Sending signal to shut down http loader")
	default:
	}
}
