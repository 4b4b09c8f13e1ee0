// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"fmt"
	"time"

	"github.com/telekom/horizon/internal/helper"
	"github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/pkg/checks"
)

const minInterval = time.Second

// Config is the configuration of the horizon check.
type Config struct {
	// Targets are the destinations to search the horizon of.
	Targets []horizon.Target `json:"targets" yaml:"targets" mapstructure:"targets"`
	// Interval is the time between two rounds.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	// Concurrency limits the number of targets searched at the same time.
	// Zero searches all targets at once.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" mapstructure:"concurrency"`
	// Retry configures how often a failed name resolution is retried.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
	// Options bound every search.
	horizon.Options `json:",inline" yaml:",inline" mapstructure:",squash"`
}

func (c *Config) For() string {
	return CheckName
}

func (c *Config) Validate() error {
	if c.Interval < minInterval {
		return checks.ErrInvalidConfig{CheckName: CheckName, Field: "horizon.interval", Reason: fmt.Sprintf("must be at least %v", minInterval)}
	}
	if c.Concurrency < 0 {
		return checks.ErrInvalidConfig{CheckName: CheckName, Field: "horizon.concurrency", Reason: "must not be negative"}
	}
	if c.Retry.Count < 0 || c.Retry.Delay < 0 {
		return checks.ErrInvalidConfig{CheckName: CheckName, Field: "horizon.retry", Reason: "count and delay must not be negative"}
	}
	if err := c.Options.Validate(); err != nil {
		return checks.ErrInvalidConfig{CheckName: CheckName, Field: "horizon.options", Reason: err.Error()}
	}
	seen := make(map[string]int, len(c.Targets))
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			return checks.ErrInvalidConfig{CheckName: CheckName, Field: fmt.Sprintf("horizon.targets[%d]", i), Reason: err.Error()}
		}
		if j, ok := seen[t.Key()]; ok {
			return checks.ErrInvalidConfig{
				CheckName: CheckName,
				Field:     fmt.Sprintf("horizon.targets[%d]", i),
				Reason:    fmt.Sprintf("duplicate of targets[%d]", j),
			}
		}
		seen[t.Key()] = i
	}
	return nil
}

// retry returns the configured retry or the default one.
func (c *Config) retry() helper.RetryConfig {
	if c.Retry == (helper.RetryConfig{}) {
		return checks.DefaultRetry
	}
	return c.Retry
}
