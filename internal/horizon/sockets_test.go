// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"net/netip"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var _ sockets = (*fakeSockets)(nil)

// sockopt is a recorded SetsockoptInt call.
type sockopt struct {
	level, opt, value int
}

// fakeSockets is an in-memory kernel. Every hook is optional; without hooks
// every call succeeds and connects complete immediately.
type fakeSockets struct {
	mu       sync.Mutex
	next     int
	open     map[int]int
	opened   int
	sockopts []sockopt
	waits    []time.Duration

	socketFunc  func(domain, typ, proto int) error
	bindFunc    func(sa unix.Sockaddr) error
	connectFunc func(sa unix.Sockaddr) error
	localFunc   func(dst unix.Sockaddr) unix.Sockaddr
	waitFunc    func(timeout time.Duration) (bool, error)
	soError     unix.Errno
	nonblocking map[int]bool
	// connected remembers the last destination per descriptor.
	connected map[int]unix.Sockaddr
}

func newFakeSockets() *fakeSockets {
	return &fakeSockets{
		next:        100,
		open:        map[int]int{},
		nonblocking: map[int]bool{},
		connected:   map[int]unix.Sockaddr{},
	}
}

func (f *fakeSockets) Socket(domain, typ, proto int) (int, error) {
	if f.socketFunc != nil {
		if err := f.socketFunc(domain, typ, proto); err != nil {
			return -1, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.opened++
	f.open[f.next] = domain
	return f.next, nil
}

func (f *fakeSockets) Bind(_ int, sa unix.Sockaddr) error {
	if f.bindFunc != nil {
		return f.bindFunc(sa)
	}
	return nil
}

func (f *fakeSockets) Connect(fd int, sa unix.Sockaddr) error {
	f.mu.Lock()
	f.connected[fd] = sa
	f.mu.Unlock()
	if f.connectFunc != nil {
		return f.connectFunc(sa)
	}
	return nil
}

func (f *fakeSockets) Getsockname(fd int) (unix.Sockaddr, error) {
	f.mu.Lock()
	dst := f.connected[fd]
	f.mu.Unlock()
	if f.localFunc != nil {
		return f.localFunc(dst), nil
	}
	switch dst.(type) {
	case *unix.SockaddrInet6:
		return &unix.SockaddrInet6{Port: 40000, Addr: netip.MustParseAddr("2001:db8::100").As16()}, nil
	default:
		return &unix.SockaddrInet4{Port: 40000, Addr: [4]byte{192, 0, 2, 100}}, nil
	}
}

func (f *fakeSockets) SetNonblock(fd int, nonblocking bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonblocking[fd] = nonblocking
	return nil
}

func (f *fakeSockets) SetsockoptInt(_, level, opt, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sockopts = append(f.sockopts, sockopt{level: level, opt: opt, value: value})
	return nil
}

func (f *fakeSockets) GetsockoptInt(_, level, opt int) (int, error) {
	if level != unix.SOL_SOCKET || opt != unix.SO_ERROR {
		return 0, unix.ENOPROTOOPT
	}
	return int(f.soError), nil
}

func (f *fakeSockets) WaitWritable(_ int, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	f.waits = append(f.waits, timeout)
	f.mu.Unlock()
	if f.waitFunc != nil {
		return f.waitFunc(timeout)
	}
	return true, nil
}

func (f *fakeSockets) Close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.open[fd]; !ok {
		return unix.EBADF
	}
	delete(f.open, fd)
	return nil
}

// leaked returns the number of descriptors that were never closed.
func (f *fakeSockets) leaked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.open)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
