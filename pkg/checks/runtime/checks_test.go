// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/horizon/pkg/checks"
)

func named(name string) *checks.CheckMock {
	return &checks.CheckMock{NameFunc: func() string { return name }}
}

func TestChecks(t *testing.T) {
	var c Checks
	a, b := named("a"), named("b")

	c.Add(a)
	c.Add(b)
	require.Equal(t, 2, c.Len())

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Same(t, b, got)

	replacement := named("a")
	c.Add(replacement)
	assert.Equal(t, 2, c.Len())
	got, _ = c.Get("a")
	assert.Same(t, replacement, got)

	c.Delete(named("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Delete(named("unknown"))
	assert.Equal(t, 1, c.Len())
}

func TestChecks_Iter_snapshot(t *testing.T) {
	var c Checks
	c.Add(named("a"))
	c.Add(named("b"))

	var names []string
	for check := range c.Iter() {
		c.Delete(check)
		names = append(names, check.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Zero(t, c.Len())
	assert.Empty(t, slices.Collect(c.Iter()))
}
