// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"fmt"

	"github.com/telekom/horizon/pkg/checks"
)

// ErrFinalShutdown is returned by Run once the monitor is shut down.
var ErrFinalShutdown = errors.New("monitor was shut down")

// ErrShutdown holds the errors of the components that failed to shut down.
type ErrShutdown struct {
	errAPI     error
	errMetrics error
	errHistory error
}

// HasError returns true if any component failed to shut down
func (e ErrShutdown) HasError() bool {
	return e.errAPI != nil || e.errMetrics != nil || e.errHistory != nil
}

func (e ErrShutdown) Error() string {
	return errors.Join(e.errAPI, e.errMetrics, e.errHistory).Error()
}

// ErrRunningCheck is reported when a check stops with an error.
type ErrRunningCheck struct {
	Check checks.Check
	Err   error
}

func (e *ErrRunningCheck) Error() string {
	return fmt.Sprintf("check %s failed: %v", e.Check.Name(), e.Err)
}

func (e *ErrRunningCheck) Unwrap() error {
	return e.Err
}

// ErrCreateOpenapiSchema is returned when a check cannot describe its result.
type ErrCreateOpenapiSchema struct {
	name string
	err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for check %s: %v", e.name, e.err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.err
}
