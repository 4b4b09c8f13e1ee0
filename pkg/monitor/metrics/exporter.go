// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol spans are exported with.
type Exporter string

const (
	// HTTP exports spans with otlp over http
	HTTP Exporter = "http"
	// GRPC exports spans with otlp over grpc
	GRPC Exporter = "grpc"
	// STDOUT writes spans to stdout
	STDOUT Exporter = "stdout"
	// NOOP drops all spans
	NOOP Exporter = "noop"
)

// String returns the string representation of the exporter
func (e Exporter) String() string {
	return string(e)
}

// Validate returns an error if the exporter is unknown. An empty exporter is valid and means [NOOP].
func (e Exporter) Validate() error {
	if e == "" || slices.Contains([]Exporter{HTTP, GRPC, STDOUT, NOOP}, e) {
		return nil
	}
	return fmt.Errorf("unsupported exporter type: %q", e)
}

// IsExporting returns true if the exporter sends spans to a collector
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create returns the span exporter configured by config.
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	switch e {
	case HTTP:
		return newHTTPExporter(ctx, config)
	case GRPC:
		return newGRPCExporter(ctx, config)
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case NOOP, "":
		return tracetest.NewNoopExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %q", e)
	}
}

func newHTTPExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(config.Url)}
	if h := headers(config); h != nil {
		opts = append(opts, otlptracehttp.WithHeaders(h))
	}

	tlsCfg, err := tlsConfig(config)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
	} else {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(config.Url)}
	if h := headers(config); h != nil {
		opts = append(opts, otlptracegrpc.WithHeaders(h))
	}

	tlsCfg, err := tlsConfig(config)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg)))
	} else {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

// headers returns the authorization header if a token is configured.
func headers(config *Config) map[string]string {
	if config.Token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + strings.TrimPrefix(config.Token, "Bearer ")}
}

// tlsConfig returns nil if tls is disabled. The system pool is used unless a
// certificate is configured.
func tlsConfig(config *Config) (*tls.Config, error) {
	if !config.TLS.Enabled {
		return nil, nil
	}
	if config.TLS.CertPath == "" {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}

	pem, err := os.ReadFile(config.TLS.CertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificate found in %q", config.TLS.CertPath)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
