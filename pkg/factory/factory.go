// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"errors"
	"fmt"

	"github.com/telekom/horizon/pkg/checks"
	"github.com/telekom/horizon/pkg/checks/horizon"
	"github.com/telekom/horizon/pkg/checks/runtime"
)

// ErrUnknownCheck is returned for a runtime configuration no check is registered for.
var ErrUnknownCheck = errors.New("unknown check type")

// NewCheck creates a check for the given runtime configuration.
func NewCheck(cfg checks.Runtime) (checks.Check, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	f, ok := registry[cfg.For()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, cfg.For())
	}
	c := f()
	if err := c.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// NewChecksFromConfig creates all checks of the runtime configuration.
func NewChecksFromConfig(cfg runtime.Config) (map[string]checks.Check, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := make(map[string]checks.Check)
	for c := range cfg.Iter() {
		check, err := NewCheck(c)
		if err != nil {
			return nil, err
		}
		result[check.Name()] = check
	}
	return result, nil
}

// registry maps check names to their constructors
var registry = map[string]func() checks.Check{
	horizon.CheckName: horizon.NewCheck,
}
