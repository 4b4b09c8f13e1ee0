// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ihorizon "github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/pkg/checks"
	"github.com/telekom/horizon/pkg/checks/horizon"
)

func validHorizon() *horizon.Config {
	return &horizon.Config{
		Targets:  []ihorizon.Target{{Host: "example.com", Service: "443"}},
		Interval: time.Minute,
		Options:  ihorizon.DefaultOptions(),
	}
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantEmpty bool
		wantErr   bool
	}{
		{name: "empty", cfg: Config{}, wantEmpty: true},
		{name: "horizon", cfg: Config{Horizon: validHorizon()}},
		{
			name: "invalid horizon",
			cfg: func() Config {
				h := validHorizon()
				h.Interval = 0
				return Config{Horizon: h}
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantEmpty, tt.cfg.Empty())
			assert.Equal(t, !tt.wantEmpty, tt.cfg.HasCheck(horizon.CheckName))
			assert.Len(t, slices.Collect(tt.cfg.Iter()), map[bool]int{true: 0, false: 1}[tt.wantEmpty])

			err := tt.cfg.Validate()
			if tt.wantErr {
				var invalid checks.ErrInvalidConfig
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, "horizon.interval", invalid.Field)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_For(t *testing.T) {
	cfg := Config{Horizon: validHorizon()}
	assert.Same(t, cfg.Horizon, cfg.For(horizon.CheckName))
	assert.Nil(t, cfg.For("dns"))
	assert.Nil(t, Config{}.For(horizon.CheckName))
	assert.False(t, cfg.HasCheck("dns"))
}
