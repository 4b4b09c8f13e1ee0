// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package pkg contains build metadata of horizon.
package pkg

// Version is the version of horizon.
// It is set at build time with -ldflags "-X github.com/telekom/horizon/pkg.Version=x.y.z".
var Version string
