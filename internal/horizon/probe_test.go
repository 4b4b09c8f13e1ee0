// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"net/netip"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/horizon/test"
	"golang.org/x/sys/unix"
)

var (
	testRoute4 = Route{
		Source:   netip.MustParseAddrPort("192.0.2.100:0"),
		Dest:     netip.MustParseAddrPort("198.51.100.1:443"),
		Family:   IPv4,
		Protocol: ProtocolTCP,
	}
	testRoute6 = Route{
		Source:   netip.MustParseAddrPort("[2001:db8::100]:0"),
		Dest:     netip.MustParseAddrPort("[2001:db8:1::1]:443"),
		Family:   IPv6,
		Protocol: ProtocolTCP,
	}
)

func newTestProber(socks *fakeSockets, clock *fakeClock) *Prober {
	return &Prober{sockets: socks, now: clock.Now}
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name        string
		route       Route
		ttl         int
		wait        time.Duration
		connectErr  error
		soError     unix.Errno
		waitFunc    func(clock *fakeClock) func(time.Duration) (bool, error)
		wantErrno   unix.Errno
		wantElapsed time.Duration
		wantMessage string
		wantWaits   []time.Duration
	}{
		{
			name:        "immediate connect",
			route:       testRoute4,
			ttl:         64,
			wait:        time.Second,
			wantErrno:   0,
			wantMessage: "TTL 64: Success after 0.000 s",
		},
		{
			name:       "pending connect completes",
			route:      testRoute4,
			ttl:        12,
			wait:       time.Second,
			connectErr: unix.EINPROGRESS,
			waitFunc: func(clock *fakeClock) func(time.Duration) (bool, error) {
				return func(time.Duration) (bool, error) {
					clock.Advance(25 * time.Millisecond)
					return true, nil
				}
			},
			wantErrno:   0,
			wantElapsed: 25 * time.Millisecond,
			wantMessage: "TTL 12: Success after 0.025 s",
			wantWaits:   []time.Duration{time.Second},
		},
		{
			name:       "host unreachable",
			route:      testRoute6,
			ttl:        3,
			wait:       time.Second,
			connectErr: unix.EINPROGRESS,
			soError:    unix.EHOSTUNREACH,
			waitFunc: func(clock *fakeClock) func(time.Duration) (bool, error) {
				return func(time.Duration) (bool, error) {
					clock.Advance(5 * time.Millisecond)
					return true, nil
				}
			},
			wantErrno:   unix.EHOSTUNREACH,
			wantElapsed: 5 * time.Millisecond,
			wantMessage: "TTL  3: " + unix.EHOSTUNREACH.Error() + " after 0.005 s",
			wantWaits:   []time.Duration{time.Second},
		},
		{
			name:       "timeout",
			route:      testRoute4,
			ttl:        5,
			wait:       time.Second,
			connectErr: unix.EINPROGRESS,
			waitFunc: func(clock *fakeClock) func(time.Duration) (bool, error) {
				return func(d time.Duration) (bool, error) {
					clock.Advance(d)
					return false, nil
				}
			},
			wantErrno:   unix.ETIMEDOUT,
			wantElapsed: time.Second,
			wantMessage: "TTL  5: " + unix.ETIMEDOUT.Error() + " after 1.000 s",
			wantWaits:   []time.Duration{time.Second},
		},
		{
			name:       "interrupted waits shrink the budget",
			route:      testRoute4,
			ttl:        7,
			wait:       100 * time.Millisecond,
			connectErr: unix.EINPROGRESS,
			waitFunc: func(clock *fakeClock) func(time.Duration) (bool, error) {
				return func(d time.Duration) (bool, error) {
					if d > 10*time.Millisecond {
						clock.Advance(30 * time.Millisecond)
						return false, unix.EINTR
					}
					clock.Advance(d)
					return false, nil
				}
			},
			wantErrno:   unix.ETIMEDOUT,
			wantElapsed: 100 * time.Millisecond,
			wantMessage: "TTL  7: " + unix.ETIMEDOUT.Error() + " after 0.100 s",
			wantWaits: []time.Duration{
				100 * time.Millisecond, 70 * time.Millisecond, 40 * time.Millisecond, 10 * time.Millisecond,
			},
		},
		{
			name:       "interruption past the deadline",
			route:      testRoute4,
			ttl:        7,
			wait:       50 * time.Millisecond,
			connectErr: unix.EINPROGRESS,
			waitFunc: func(clock *fakeClock) func(time.Duration) (bool, error) {
				return func(time.Duration) (bool, error) {
					clock.Advance(80 * time.Millisecond)
					return false, unix.EINTR
				}
			},
			wantErrno:   unix.ETIMEDOUT,
			wantElapsed: 80 * time.Millisecond,
			wantMessage: "TTL  7: " + unix.ETIMEDOUT.Error() + " after 0.080 s",
			wantWaits:   []time.Duration{50 * time.Millisecond},
		},
		{
			name:       "interrupted connect continues in the background",
			route:      testRoute4,
			ttl:        9,
			wait:       time.Second,
			connectErr: unix.EINTR,
			soError:    unix.ECONNREFUSED,
			waitFunc: func(clock *fakeClock) func(time.Duration) (bool, error) {
				return func(time.Duration) (bool, error) {
					clock.Advance(time.Millisecond)
					return true, nil
				}
			},
			wantErrno:   unix.ECONNREFUSED,
			wantElapsed: time.Millisecond,
			wantMessage: "TTL  9: " + unix.ECONNREFUSED.Error() + " after 0.001 s",
			wantWaits:   []time.Duration{time.Second},
		},
		{
			name:        "synchronous failure",
			route:       testRoute4,
			ttl:         2,
			wait:        time.Second,
			connectErr:  unix.ENETUNREACH,
			wantErrno:   unix.ENETUNREACH,
			wantMessage: "TTL  2: " + unix.ENETUNREACH.Error() + " after 0.000 s",
		},
		{
			name:       "wait fails",
			route:      testRoute4,
			ttl:        4,
			wait:       time.Second,
			connectErr: unix.EINPROGRESS,
			waitFunc: func(*fakeClock) func(time.Duration) (bool, error) {
				return func(time.Duration) (bool, error) {
					return false, unix.ENOMEM
				}
			},
			wantErrno:   unix.ENOMEM,
			wantMessage: "TTL  4: " + unix.ENOMEM.Error() + " after 0.000 s",
			wantWaits:   []time.Duration{time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			socks := newFakeSockets()
			socks.soError = tt.soError
			socks.connectFunc = func(unix.Sockaddr) error { return tt.connectErr }
			if tt.waitFunc != nil {
				socks.waitFunc = tt.waitFunc(clock)
			}
			p := newTestProber(socks, clock)

			out := p.Probe(t.Context(), tt.route, tt.ttl, tt.wait)

			assert.Equal(t, tt.ttl, out.TTL)
			assert.Equal(t, tt.wantErrno, out.Errno)
			assert.Equal(t, tt.wantElapsed, out.Elapsed)
			assert.Equal(t, tt.wantMessage, out.Message)
			assert.Equal(t, tt.wantWaits, socks.waits)
			assert.Equal(t, 1, socks.opened)
			assert.Zero(t, socks.leaked(), "socket left open")
			for _, remaining := range socks.waits {
				assert.LessOrEqual(t, remaining, tt.wait, "wait exceeds the budget")
			}
		})
	}
}

func TestProber_Probe_socketSetup(t *testing.T) {
	tests := []struct {
		name       string
		route      Route
		ttl        int
		wantLevel  int
		wantOpt    int
		wantDomain int
	}{
		{
			name:       "ipv4 sets the ttl",
			route:      testRoute4,
			ttl:        17,
			wantLevel:  unix.IPPROTO_IP,
			wantOpt:    unix.IP_TTL,
			wantDomain: unix.AF_INET,
		},
		{
			name:       "ipv6 sets the unicast hop limit",
			route:      testRoute6,
			ttl:        1,
			wantLevel:  unix.IPPROTO_IPV6,
			wantOpt:    unix.IPV6_UNICAST_HOPS,
			wantDomain: unix.AF_INET6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				domains []int
				types   []int
				bound   []unix.Sockaddr
			)
			socks := newFakeSockets()
			socks.socketFunc = func(domain, typ, _ int) error {
				domains = append(domains, domain)
				types = append(types, typ)
				return nil
			}
			socks.bindFunc = func(sa unix.Sockaddr) error {
				bound = append(bound, sa)
				return nil
			}
			p := newTestProber(socks, newFakeClock())

			out := p.Probe(t.Context(), tt.route, tt.ttl, time.Second)
			require.Zero(t, out.Errno)

			assert.Equal(t, []int{tt.wantDomain}, domains)
			assert.Equal(t, []int{unix.SOCK_STREAM}, types)
			assert.Equal(t, []sockopt{{level: tt.wantLevel, opt: tt.wantOpt, value: tt.ttl}}, socks.sockopts)
			require.Len(t, bound, 1)
			assert.Equal(t, tt.route.Source, fromSockaddr(bound[0]))
			require.Len(t, socks.nonblocking, 1)
			for _, nb := range socks.nonblocking {
				assert.True(t, nb, "socket must be non-blocking")
			}
			require.Len(t, socks.connected, 1)
			for _, sa := range socks.connected {
				assert.Equal(t, tt.route.Dest, fromSockaddr(sa))
			}
		})
	}
}

func TestProber_Probe_setupFailures(t *testing.T) {
	t.Run("socket", func(t *testing.T) {
		socks := newFakeSockets()
		socks.socketFunc = func(int, int, int) error { return unix.EMFILE }
		p := newTestProber(socks, newFakeClock())

		out := p.Probe(t.Context(), testRoute4, 8, time.Second)
		assert.Equal(t, unix.EMFILE, out.Errno)
		assert.True(t, out.Local)
		assert.Zero(t, socks.opened)
	})

	t.Run("bind", func(t *testing.T) {
		socks := newFakeSockets()
		socks.bindFunc = func(unix.Sockaddr) error { return unix.EADDRNOTAVAIL }
		p := newTestProber(socks, newFakeClock())

		out := p.Probe(t.Context(), testRoute4, 8, time.Second)
		assert.Equal(t, unix.EADDRNOTAVAIL, out.Errno)
		assert.True(t, out.Local)
		assert.Empty(t, socks.connected, "connect must not be attempted")
		assert.Zero(t, socks.leaked())
	})
}

func TestProber_Probe_invalidFamilyPanics(t *testing.T) {
	socks := newFakeSockets()
	p := newTestProber(socks, newFakeClock())

	route := testRoute4
	route.Family = Unspecified
	assert.Panics(t, func() { p.Probe(t.Context(), route, 1, time.Second) })
	assert.Zero(t, socks.opened)
}

func TestProber_Probe_noDescriptorLeak(t *testing.T) {
	clock := newFakeClock()
	socks := newFakeSockets()
	var n int
	socks.connectFunc = func(unix.Sockaddr) error {
		n++
		switch n % 3 {
		case 0:
			return nil
		case 1:
			return unix.EINPROGRESS
		default:
			return unix.ENETUNREACH
		}
	}
	socks.waitFunc = func(d time.Duration) (bool, error) {
		clock.Advance(d)
		return false, nil
	}
	p := newTestProber(socks, clock)

	for ttl := 1; ttl <= 500; ttl++ {
		route := testRoute4
		if ttl%2 == 0 {
			route = testRoute6
		}
		p.Probe(t.Context(), route, ttl%maxHopLimit+1, time.Millisecond)
	}
	assert.Equal(t, 500, socks.opened)
	assert.Zero(t, socks.leaked())
}

func TestProbe_Loopback(t *testing.T) {
	test.MarkAsLong(t)

	route := Route{
		Source:   netip.MustParseAddrPort("127.0.0.1:0"),
		Dest:     test.ListenLoopback(t),
		Family:   IPv4,
		Protocol: ProtocolTCP,
	}

	out := Probe(t.Context(), route, 64, time.Second)
	assert.Zero(t, out.Errno, out.Message)
	assert.Equal(t, 64, out.TTL)
	assert.NoError(t, out.Err())
}

func TestProbe_LoopbackClosedPort(t *testing.T) {
	test.MarkAsLong(t)

	route := Route{
		Source:   netip.MustParseAddrPort("127.0.0.1:0"),
		Dest:     test.ClosedLoopbackPort(t),
		Family:   IPv4,
		Protocol: ProtocolTCP,
	}

	out := Probe(t.Context(), route, 64, time.Second)
	assert.Equal(t, unix.ECONNREFUSED, out.Errno)
	assert.False(t, out.TimedOut())
	assert.False(t, out.Unreachable())
}

func TestProbe_LoopbackNoDescriptorLeak(t *testing.T) {
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("descriptor table not available")
	}
	test.MarkAsLong(t)

	route := Route{
		Source:   netip.MustParseAddrPort("127.0.0.1:0"),
		Dest:     test.ClosedLoopbackPort(t),
		Family:   IPv4,
		Protocol: ProtocolTCP,
	}
	countFDs := func() int {
		entries, err := os.ReadDir("/proc/self/fd")
		require.NoError(t, err)
		return len(entries)
	}

	before := countFDs()
	for range 200 {
		Probe(t.Context(), route, 64, 100*time.Millisecond)
	}
	assert.Equal(t, before, countFDs())
}
