// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/horizon/pkg"
	"github.com/telekom/horizon/test"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew(t *testing.T) {
	test.MarkAsShort(t)

	m := New(Config{})
	registry := m.GetRegistry()
	require.NotNil(t, registry)
	assert.Same(t, registry, m.GetRegistry())

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge"})
	require.NoError(t, registry.Register(gauge))
	gauge.Set(1)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_gauge"])
	assert.True(t, names["go_goroutines"], "go collector must be registered")
}

func TestManager_InitTracing(t *testing.T) {
	test.MarkAsShort(t)

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "stdout exporter", config: Config{Exporter: STDOUT}},
		{name: "otlp http exporter", config: Config{Exporter: HTTP, Url: "http://localhost:4318"}},
		{name: "otlp grpc exporter with token", config: Config{Exporter: GRPC, Url: "http://localhost:4317", Token: "secret"}},
		{name: "noop exporter", config: Config{Exporter: NOOP}},
		{name: "empty exporter", config: Config{}},
		{name: "unsupported exporter", config: Config{Exporter: "zipkin"}, wantErr: true},
		{
			name:    "missing certificate",
			config:  Config{Exporter: HTTP, Url: "https://localhost:4318", TLS: TLSConfig{Enabled: true, CertPath: "/does/not/exist.pem"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.config)
			err := m.InitTracing(t.Context())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())
			assert.NoError(t, m.Shutdown(t.Context()))
		})
	}
}

func TestManager_Shutdown_withoutTracing(t *testing.T) {
	assert.NoError(t, New(Config{}).Shutdown(t.Context()))
}

func TestVersion(t *testing.T) {
	orig := pkg.Version
	t.Cleanup(func() { pkg.Version = orig })

	pkg.Version = ""
	assert.Equal(t, "dev", version())
	pkg.Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", version())
}
