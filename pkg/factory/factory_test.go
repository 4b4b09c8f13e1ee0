// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ihorizon "github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/pkg/checks"
	"github.com/telekom/horizon/pkg/checks/horizon"
	"github.com/telekom/horizon/pkg/checks/runtime"
)

type unknownConfig struct{}

func (unknownConfig) For() string     { return "unknown" }
func (unknownConfig) Validate() error { return nil }

func TestNewChecksFromConfig(t *testing.T) {
	hc := &horizon.Config{
		Targets:  []ihorizon.Target{{Host: "example.com", Service: "443"}},
		Interval: time.Minute,
		Options:  ihorizon.DefaultOptions(),
	}

	tests := []struct {
		name      string
		cfg       runtime.Config
		wantNames []string
		wantErr   bool
	}{
		{name: "no checks", cfg: runtime.Config{}},
		{name: "horizon", cfg: runtime.Config{Horizon: hc}, wantNames: []string{horizon.CheckName}},
		{
			name:    "invalid config",
			cfg:     runtime.Config{Horizon: &horizon.Config{Interval: time.Millisecond}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewChecksFromConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, len(tt.wantNames))
			for _, name := range tt.wantNames {
				c, ok := got[name]
				require.True(t, ok, "check %q missing", name)
				assert.Equal(t, tt.cfg.For(name), c.GetConfig())
			}
		})
	}
}

func TestNewCheck(t *testing.T) {
	_, err := NewCheck(nil)
	assert.Error(t, err)

	_, err = NewCheck(unknownConfig{})
	assert.ErrorIs(t, err, ErrUnknownCheck)

	var _ checks.Runtime = unknownConfig{}
}
