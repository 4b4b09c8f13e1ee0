// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"iter"
	"slices"
	"sync"

	"github.com/telekom/horizon/pkg/checks"
)

// Checks is the set of running checks, keyed by their name.
type Checks struct {
	mu     sync.RWMutex
	checks []checks.Check
}

// Add adds a check. A check with the same name is replaced.
func (c *Checks) Add(check checks.Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(check.Name()); i >= 0 {
		c.checks[i] = check
		return
	}
	c.checks = append(c.checks, check)
}

// Delete removes the check with the name of check.
func (c *Checks) Delete(check checks.Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(check.Name()); i >= 0 {
		c.checks = slices.Delete(c.checks, i, i+1)
	}
}

// Get returns the check with the given name.
func (c *Checks) Get(name string) (checks.Check, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(name); i >= 0 {
		return c.checks[i], true
	}
	return nil, false
}

// Len returns the number of checks.
func (c *Checks) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.checks)
}

// Iter returns a snapshot of the checks. Adding or deleting checks while
// iterating is safe.
func (c *Checks) Iter() iter.Seq[checks.Check] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Values(slices.Clone(c.checks))
}

func (c *Checks) index(name string) int {
	return slices.IndexFunc(c.checks, func(check checks.Check) bool {
		return check.Name() == name
	})
}
