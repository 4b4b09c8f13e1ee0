// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package db stores the results of the checks.
package db

import (
	"github.com/telekom/horizon/pkg/checks"
)

// DB holds the latest result of every check.
type DB interface {
	// Save replaces the latest result of the check named in the dto.
	Save(result checks.ResultDTO)
	// Get returns the latest result of a check.
	Get(check string) (result checks.Result, ok bool)
	// List returns the latest result of all checks.
	List() map[string]checks.Result
}
