// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"fmt"

	"github.com/telekom/horizon/internal/logger"
)

// Config holds the configuration of the OpenTelemetry tracing.
type Config struct {
	// Enabled turns tracing on
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Exporter is the exporter the spans are sent with
	Exporter Exporter `yaml:"exporter" mapstructure:"exporter"`
	// Url is the collector endpoint for the otlp exporters
	Url string `yaml:"url" mapstructure:"url"`
	// Token authenticates against the collector as a bearer token
	Token string `yaml:"token" mapstructure:"token"`
	// TLS holds the tls configuration of the otlp exporters
	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
}

type TLSConfig struct {
	// Enabled turns tls on for the collector connection
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// CertPath is the path to a PEM encoded CA certificate.
	// Only needed if the collector uses a custom certificate authority.
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
}

func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if err := c.Exporter.Validate(); err != nil {
		log.ErrorContext(ctx, "Invalid exporter", "error", err)
		return err
	}

	if c.Exporter.IsExporting() && c.Url == "" {
		log.ErrorContext(ctx, "Url is required for otlp exporter", "exporter", c.Exporter)
		return fmt.Errorf("url is required for otlp exporter %q", c.Exporter)
	}
	if c.TLS.CertPath != "" && !c.TLS.Enabled {
		log.ErrorContext(ctx, "Certificate configured without tls", "certPath", c.TLS.CertPath)
		return fmt.Errorf("tls must be enabled to use the certificate %q", c.TLS.CertPath)
	}
	return nil
}
