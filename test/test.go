// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test provides helpers shared by the tests of all packages.
package test

import (
	"net"
	"net/netip"
	"net/url"
	"os"
	"testing"
)

// MarkAsShort marks the test as short. It is skipped when LONG_TESTS_ONLY is set.
func MarkAsShort(t testing.TB) {
	t.Helper()
	if os.Getenv("LONG_TESTS_ONLY") != "" {
		t.Skip("skipping short test")
	}
}

// MarkAsLong marks the test as long running. It is skipped with -short.
func MarkAsLong(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping long test in short mode")
	}
}

// ListenLoopback starts a TCP listener on an ephemeral IPv4 loopback port that
// accepts and immediately closes connections until the test ends.
func ListenLoopback(t testing.TB) netip.AddrPort {
	t.Helper()
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on loopback: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()
	return l.Addr().(*net.TCPAddr).AddrPort()
}

// ClosedLoopbackPort returns an IPv4 loopback address whose port had a listener
// that is closed again. Connecting to it is refused.
func ClosedLoopbackPort(t testing.TB) netip.AddrPort {
	t.Helper()
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on loopback: %v", err)
	}
	addr := l.Addr().(*net.TCPAddr).AddrPort()
	if err := l.Close(); err != nil {
		t.Fatalf("failed to close listener: %v", err)
	}
	return addr
}

// ToURLOrFail parses the given string into a URL or fails the test.
func ToURLOrFail(t testing.TB, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("failed to parse URL: %v", err)
	}
	return u
}
