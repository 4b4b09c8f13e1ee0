// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"maps"
	"sync"

	"github.com/telekom/horizon/pkg/checks"
)

var _ DB = (*InMemory)(nil)

// InMemory keeps the latest results in memory.
type InMemory struct {
	mu      sync.RWMutex
	results map[string]checks.Result
}

func NewInMemory() *InMemory {
	return &InMemory{results: make(map[string]checks.Result)}
}

func (i *InMemory) Save(result checks.ResultDTO) {
	if result.Result == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.results[result.Name] = *result.Result
}

func (i *InMemory) Get(check string) (checks.Result, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	res, ok := i.results[check]
	return res, ok
}

// List returns a copy of all results
func (i *InMemory) List() map[string]checks.Result {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return maps.Clone(i.results)
}
