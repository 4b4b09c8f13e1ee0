// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "noop without url", config: Config{Enabled: true, Exporter: NOOP}},
		{name: "stdout without url", config: Config{Enabled: true, Exporter: STDOUT}},
		{name: "http with url", config: Config{Enabled: true, Exporter: HTTP, Url: "https://otel.example.com:4318"}},
		{name: "grpc without url", config: Config{Enabled: true, Exporter: GRPC}, wantErr: true},
		{name: "unknown exporter", config: Config{Enabled: true, Exporter: "otel"}, wantErr: true},
		{
			name:    "certificate without tls",
			config:  Config{Enabled: true, Exporter: GRPC, Url: "otel:4317", TLS: TLSConfig{CertPath: "ca.pem"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(t.Context()); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
