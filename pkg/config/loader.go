// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"

	"github.com/telekom/horizon/pkg/checks/runtime"
)

//go:generate go tool moq -out loader_moq.go . Loader
type Loader interface {
	// Run loads the runtime configuration and sends it on the channel
	// the loader was created with. Errors are handled by the loader itself.
	// Run returns when the loader is shut down or the context is done.
	Run(context.Context) error
	// Shutdown stops the loader.
	Shutdown(context.Context)
}

// NewLoader returns the runtime configuration loader of the configured type.
func NewLoader(cfg *Config, cRuntime chan<- runtime.Config) Loader {
	switch cfg.Loader.Type {
	case LoaderHttp:
		return NewHttpLoader(cfg, cRuntime)
	default:
		return NewFileLoader(cfg, cRuntime)
	}
}
