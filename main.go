// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/telekom/horizon/cmd"
	"github.com/telekom/horizon/pkg"
)

func main() {
	cmd.Execute(pkg.Version)
}
