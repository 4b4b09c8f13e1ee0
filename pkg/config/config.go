// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/telekom/horizon/internal/helper"
	"github.com/telekom/horizon/pkg/api"
	"github.com/telekom/horizon/pkg/db"
	"github.com/telekom/horizon/pkg/monitor/metrics"
)

// Loader types
const (
	LoaderFile = "file"
	LoaderHttp = "http"
)

// Metadata is optional ownership information exposed with the horizon_instance_info metric.
type Metadata struct {
	// Team owning the instance
	Team TeamMetadata `yaml:"team" mapstructure:"team"`
	// Platform identifies where the instance runs, e.g. k8s-prod-eu
	Platform string `yaml:"platform" mapstructure:"platform"`
}

type TeamMetadata struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Email string `yaml:"email" mapstructure:"email"`
}

// Labels returns the metadata as instance info labels.
func (m Metadata) Labels() map[string]string {
	return map[string]string{
		"team_name":  m.Team.Name,
		"team_email": m.Team.Email,
		"platform":   m.Platform,
	}
}

// Config is the startup configuration of the monitor.
type Config struct {
	// Name is the DNS name of the instance
	Name string `yaml:"name" mapstructure:"name"`
	// Metadata is optional ownership metadata
	Metadata Metadata `yaml:"metadata" mapstructure:"metadata"`
	// Loader configures where the runtime configuration is loaded from
	Loader LoaderConfig `yaml:"loader" mapstructure:"loader"`
	// Api configures the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
	// Telemetry configures tracing
	Telemetry metrics.Config `yaml:"telemetry" mapstructure:"telemetry"`
	// History configures the search history database
	History db.Config `yaml:"history" mapstructure:"history"`
}

// LoaderConfig is the configuration of the runtime configuration loader
type LoaderConfig struct {
	Type     string           `yaml:"type" mapstructure:"type"`
	Interval time.Duration    `yaml:"interval" mapstructure:"interval"`
	Http     HttpLoaderConfig `yaml:"http" mapstructure:"http"`
	File     FileLoaderConfig `yaml:"file" mapstructure:"file"`
}

type HttpLoaderConfig struct {
	Url      string             `yaml:"url" mapstructure:"url"`
	Token    string             `yaml:"token" mapstructure:"token"`
	Timeout  time.Duration      `yaml:"timeout" mapstructure:"timeout"`
	RetryCfg helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

type FileLoaderConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// HasTelemetry returns true if tracing is enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasHistory returns true if the search history is enabled
func (c *Config) HasHistory() bool {
	return c.History.Enabled()
}
