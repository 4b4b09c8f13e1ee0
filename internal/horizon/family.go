// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Family is the address family a search is restricted to.
type Family int

// Family constants. The numeric values match the selectors accepted on the command line.
const (
	// Unspecified lets the resolver pick any family.
	Unspecified Family = 0
	// IPv4 restricts resolution and probing to IPv4.
	IPv4 Family = 4
	// IPv6 restricts resolution and probing to IPv6.
	IPv6 Family = 6
)

// ParseFamily turns a family selector into a [Family].
// Empty, "0" and "auto" select [Unspecified].
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "auto":
		return Unspecified, nil
	case "4", "ipv4", "inet":
		return IPv4, nil
	case "6", "ipv6", "inet6":
		return IPv6, nil
	default:
		return Unspecified, fmt.Errorf("%w: %q", ErrInvalidFamily, s)
	}
}

// Valid reports whether f is one of the supported selectors.
func (f Family) Valid() bool {
	return f == Unspecified || f == IPv4 || f == IPv6
}

func (f Family) String() string {
	switch f {
	case Unspecified:
		return "auto"
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// network returns the network name understood by [net.Resolver.LookupNetIP].
func (f Family) network() string {
	switch f {
	case IPv4:
		return "ip4"
	case IPv6:
		return "ip6"
	default:
		return "ip"
	}
}

// domain returns the socket domain for f.
// Unspecified has no domain and yields [unix.AF_UNSPEC].
func (f Family) domain() int {
	switch f {
	case IPv4:
		return unix.AF_INET
	case IPv6:
		return unix.AF_INET6
	default:
		return unix.AF_UNSPEC
	}
}

// accepts reports whether a resolved address may be used under the family constraint f.
func (f Family) accepts(other Family) bool {
	return f == Unspecified || f == other
}

func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFamily, int(f))
	}
	return []byte(f.String()), nil
}

func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
