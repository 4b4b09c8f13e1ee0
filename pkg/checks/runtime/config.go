// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"errors"
	"iter"

	"github.com/telekom/horizon/pkg/checks"
	"github.com/telekom/horizon/pkg/checks/horizon"
)

// Config holds the runtime configuration of the checks a monitor runs.
// A nil field disables the check.
type Config struct {
	Horizon *horizon.Config `yaml:"horizon" json:"horizon"`
}

// Empty returns true if no checks are configured
func (c Config) Empty() bool {
	return c.Horizon == nil
}

func (c Config) Validate() (err error) {
	for cfg := range c.Iter() {
		if vErr := cfg.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	return err
}

// Iter returns the configured checks as an iterator
func (c Config) Iter() iter.Seq[checks.Runtime] {
	return func(yield func(checks.Runtime) bool) {
		if c.Horizon != nil {
			yield(c.Horizon)
		}
	}
}

// HasCheck returns true if a check with the given name is configured
func (c Config) HasCheck(name string) bool {
	return c.For(name) != nil
}

// For returns the runtime configuration of the check with the given name,
// or nil if it is not configured.
func (c Config) For(name string) checks.Runtime {
	if name == horizon.CheckName && c.Horizon != nil {
		return c.Horizon
	}
	return nil
}
