// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"context"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/horizon/internal/helper"
)

// DefaultRetry is used for name resolution when a check configures no retry of its own.
var DefaultRetry = helper.RetryConfig{
	Count: 3,
	Delay: time.Second,
}

// Check is a periodic measurement run by the monitor.
//
//go:generate go tool moq -out base_moq.go . Check
type Check interface {
	// Run starts the check. It runs until the context is canceled or
	// Shutdown is called and reports every finished round on cResult.
	// A non-nil error stops the monitor.
	Run(ctx context.Context, cResult chan ResultDTO) error
	// Shutdown stops a running check.
	Shutdown()
	// UpdateConfig replaces the configuration, also while the check is running.
	// It returns an error if the configuration is of the wrong type.
	UpdateConfig(config Runtime) error
	// GetConfig returns the current configuration.
	GetConfig() Runtime
	// Name returns the unique name of the check.
	Name() string
	// Schema returns the openapi schema of the results the check reports.
	Schema() (*openapi3.SchemaRef, error)
	// GetMetricCollectors returns the prometheus collectors of the check.
	GetMetricCollectors() []prometheus.Collector
	// RemoveLabelledMetrics removes all metrics whose target label is target.
	RemoveLabelledMetrics(target string) error
}

// CheckBase holds the fields every check implementation shares.
type CheckBase struct {
	// Mu guards the configuration of the check.
	Mu sync.Mutex
	// DoneChan signals the shutdown of the check.
	DoneChan chan struct{}
}

// NewCheckBase returns a CheckBase ready to be embedded.
func NewCheckBase() CheckBase {
	return CheckBase{
		Mu:       sync.Mutex{},
		DoneChan: make(chan struct{}, 1),
	}
}

// Runtime is the configuration of a single check.
type Runtime interface {
	// For returns the name of the check being configured.
	For() string
	// Validate checks if the configuration is valid.
	Validate() error
}

// Result is the outcome of one round of a check.
type Result struct {
	// Data holds the check specific result.
	Data any `json:"data"`
	// Timestamp is the time the round finished.
	Timestamp time.Time `json:"timestamp"`
}

// ResultDTO associates a result with the name of the check that produced it.
type ResultDTO struct {
	Name   string
	Result *Result
}
