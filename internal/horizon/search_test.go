// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestNextProbe(t *testing.T) {
	tests := []struct {
		low, high int
		want      int
	}{
		{low: 4, high: 9, want: 6},
		{low: 1, high: 3, want: 2},
		{low: 1, high: 31, want: 6},
		{low: 6, high: 31, want: 14},
		{low: 29, high: 31, want: 30},
		{low: 9, high: 10, want: 9},
		{low: 16, high: 17, want: 16},
		{low: 254, high: 256, want: 255},
		{low: 0, high: 31, want: 0},
		{low: 0, high: 1, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NextProbe(tt.low, tt.high), "NextProbe(%d, %d)", tt.low, tt.high)
	}
}

func TestNextProbe_withinBounds(t *testing.T) {
	for low := 1; low <= 60; low++ {
		for high := low + 2; high <= 256; high++ {
			got := NextProbe(low, high)
			if got <= low || got >= high {
				t.Fatalf("NextProbe(%d, %d) = %d, want a value in (%d, %d)", low, high, got, low, high)
			}
		}
	}
}

func TestNextProbe_exactCeiling(t *testing.T) {
	for low := 1; low <= 255; low++ {
		for high := low + 1; high <= 256; high++ {
			n := low * (high - 1)
			got := NextProbe(low, high)
			if got*got < n || (got-1)*(got-1) >= n {
				t.Fatalf("NextProbe(%d, %d) = %d is not ceil(sqrt(%d))", low, high, got, n)
			}
			if want := int(math.Ceil(math.Sqrt(float64(n)))); got != want {
				t.Fatalf("NextProbe(%d, %d) = %d, want %d", low, high, got, want)
			}
		}
	}
}

func TestNextProbe_deterministic(t *testing.T) {
	for range 3 {
		assert.Equal(t, 6, NextProbe(4, 9))
		assert.Equal(t, 14, NextProbe(6, 31))
	}
}

func TestIsUnreachable(t *testing.T) {
	tests := []struct {
		errno unix.Errno
		want  bool
	}{
		{errno: unix.EHOSTUNREACH, want: true},
		{errno: unix.ETIMEDOUT, want: false},
		{errno: unix.ECONNREFUSED, want: false},
		{errno: unix.ENETUNREACH, want: false},
		{errno: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.errno.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnreachable(tt.errno))
		})
	}
}
