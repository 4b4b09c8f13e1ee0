// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"math"

	"golang.org/x/sys/unix"
)

// NextProbe returns the TTL to probe next for the bounds [low, high):
// the geometric mean ceil(sqrt(low*(high-1))). It favors small TTLs, where most
// destinations are, over the arithmetic midpoint.
//
// The caller must seed low with at least 1: NextProbe(0, high) is always 0.
// For 1 <= low and high > low+1 the result lies in (low, high).
// Converged bounds (high-low <= 1) have no next probe and must not be passed.
func NextProbe(low, high int) int {
	n := low * (high - 1)
	if n <= 0 {
		return 0
	}

	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for r*r < n {
		r++
	}
	return r
}

// IsUnreachable reports whether errno is the host-unreachable signal,
// which ends the search downwards, as opposed to a timeout.
func IsUnreachable(errno unix.Errno) bool {
	return errno == unix.EHOSTUNREACH
}
