// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    Family
		wantErr bool
	}{
		{in: "", want: Unspecified},
		{in: "0", want: Unspecified},
		{in: "auto", want: Unspecified},
		{in: "4", want: IPv4},
		{in: "IPv4", want: IPv4},
		{in: "inet", want: IPv4},
		{in: "6", want: IPv6},
		{in: " ipv6 ", want: IPv6},
		{in: "inet6", want: IPv6},
		{in: "5", wantErr: true},
		{in: "ipx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFamily(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFamily)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFamily(t *testing.T) {
	assert.True(t, Unspecified.Valid())
	assert.True(t, IPv4.Valid())
	assert.True(t, IPv6.Valid())
	assert.False(t, Family(5).Valid())

	assert.Equal(t, unix.AF_INET, IPv4.domain())
	assert.Equal(t, unix.AF_INET6, IPv6.domain())
	assert.Equal(t, "ip4", IPv4.network())
	assert.Equal(t, "ip6", IPv6.network())
	assert.Equal(t, "ip", Unspecified.network())

	assert.True(t, Unspecified.accepts(IPv6))
	assert.True(t, IPv4.accepts(IPv4))
	assert.False(t, IPv4.accepts(IPv6))
	assert.Equal(t, "family(5)", Family(5).String())
}

func TestFamily_yaml(t *testing.T) {
	var target Target
	require.NoError(t, yaml.Unmarshal([]byte("host: example.com\nservice: https\nfamily: ipv6\n"), &target))
	assert.Equal(t, Target{Host: "example.com", Service: "https", Family: IPv6}, target)

	out, err := yaml.Marshal(target)
	require.NoError(t, err)
	assert.Contains(t, string(out), "family: ipv6")

	require.Error(t, yaml.Unmarshal([]byte("host: example.com\nfamily: ipx\n"), &target))

	_, err = Family(9).MarshalText()
	require.ErrorIs(t, err, ErrInvalidFamily)
}
