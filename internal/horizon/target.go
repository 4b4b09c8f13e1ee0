// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// maxHopLimit is the largest value the IP TTL and IPv6 hop limit fields can hold.
const maxHopLimit = 255

// Target is a destination to search the horizon of.
type Target struct {
	// Host is a host name or an address literal.
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	// Service is a port number or a TCP service name.
	Service string `json:"service" yaml:"service" mapstructure:"service"`
	// Family restricts resolution to one address family.
	Family Family `json:"family" yaml:"family" mapstructure:"family"`
	// Source optionally selects the local address to probe from.
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
}

func (t Target) String() string {
	if t.Service != "" {
		return net.JoinHostPort(t.Host, t.Service)
	}
	return t.Host
}

// Key identifies the target among others. Targets that differ only in their
// family or source have distinct keys, e.g. "example.com:443 (ipv6, from 2001:db8::1)".
func (t Target) Key() string {
	var qualifiers []string
	if t.Family != Unspecified {
		qualifiers = append(qualifiers, t.Family.String())
	}
	if t.Source != "" {
		qualifiers = append(qualifiers, "from "+t.Source)
	}
	if len(qualifiers) == 0 {
		return t.String()
	}
	return fmt.Sprintf("%s (%s)", t, strings.Join(qualifiers, ", "))
}

func (t Target) Validate() error {
	if t.Host == "" {
		return errors.New("target host cannot be empty")
	}
	if !t.Family.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFamily, int(t.Family))
	}
	return nil
}

// Options configures a search.
type Options struct {
	// MinTTL is the smallest TTL that may be probed.
	MinTTL int `json:"minTTL" yaml:"minTTL" mapstructure:"minTTL"`
	// MaxTTL is the largest TTL that may be probed.
	MaxTTL int `json:"maxTTL" yaml:"maxTTL" mapstructure:"maxTTL"`
	// Timeout is the wait budget of every single probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{MinTTL: 1, MaxTTL: 30, Timeout: time.Second}
}

func (o Options) Validate() error {
	if o.MinTTL < 1 {
		return fmt.Errorf("invalid min TTL %d: must be at least 1", o.MinTTL)
	}
	if o.MaxTTL < o.MinTTL || o.MaxTTL > maxHopLimit {
		return fmt.Errorf("invalid max TTL %d: must be between %d and %d", o.MaxTTL, o.MinTTL, maxHopLimit)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v: must be greater than 0", o.Timeout)
	}
	return nil
}

// bounds returns the initial search interval. Nothing below MinTTL is known to
// time out and MaxTTL+1 stands in for "reached" until a probe proves otherwise.
func (o Options) bounds() Bounds {
	return Bounds{Low: o.MinTTL - 1, High: o.MaxTTL + 1}
}
