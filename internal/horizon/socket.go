// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// sockets is the set of socket system calls the resolver and the prober use.
// It exists so tests can replace the kernel.
type sockets interface {
	Socket(domain, typ, proto int) (int, error)
	Bind(fd int, sa unix.Sockaddr) error
	Connect(fd int, sa unix.Sockaddr) error
	Getsockname(fd int) (unix.Sockaddr, error)
	SetNonblock(fd int, nonblocking bool) error
	SetsockoptInt(fd, level, opt, value int) error
	GetsockoptInt(fd, level, opt int) (int, error)
	// WaitWritable blocks until fd is writable or timeout elapses.
	// It returns false without error when the timeout elapsed.
	WaitWritable(fd int, timeout time.Duration) (bool, error)
	Close(fd int) error
}

var _ sockets = sysSockets{}

// sysSockets calls straight into the kernel.
type sysSockets struct{}

func (sysSockets) Socket(domain, typ, proto int) (int, error) {
	return unix.Socket(domain, typ|unix.SOCK_CLOEXEC, proto)
}

func (sysSockets) Bind(fd int, sa unix.Sockaddr) error { return unix.Bind(fd, sa) }

func (sysSockets) Connect(fd int, sa unix.Sockaddr) error { return unix.Connect(fd, sa) }

func (sysSockets) Getsockname(fd int) (unix.Sockaddr, error) { return unix.Getsockname(fd) }

func (sysSockets) SetNonblock(fd int, nonblocking bool) error { return unix.SetNonblock(fd, nonblocking) }

func (sysSockets) SetsockoptInt(fd, level, opt, value int) error {
	return unix.SetsockoptInt(fd, level, opt, value)
}

func (sysSockets) GetsockoptInt(fd, level, opt int) (int, error) {
	return unix.GetsockoptInt(fd, level, opt)
}

func (sysSockets) WaitWritable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}} // #nosec G115 // descriptors fit into int32
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	n, err := unix.Ppoll(fds, &ts, nil)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (sysSockets) Close(fd int) error { return unix.Close(fd) }

// toSockaddr converts an address into its kernel representation.
func toSockaddr(ap netip.AddrPort) (unix.Sockaddr, error) {
	addr := ap.Addr().Unmap()
	switch {
	case addr.Is4():
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: addr.As4()}, nil
	case addr.Is6():
		zone, err := zoneIndex(addr.Zone())
		if err != nil {
			return nil, err
		}
		return &unix.SockaddrInet6{Port: int(ap.Port()), ZoneId: zone, Addr: addr.As16()}, nil
	default:
		return nil, fmt.Errorf("invalid socket address %q", ap)
	}
}

// fromSockaddr converts a kernel address back. Unknown address types yield the zero value.
func fromSockaddr(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)) // #nosec G115 // ports are 16 bit
	case *unix.SockaddrInet6:
		addr := netip.AddrFrom16(a.Addr).WithZone(zoneName(a.ZoneId))
		return netip.AddrPortFrom(addr, uint16(a.Port)) // #nosec G115 // ports are 16 bit
	default:
		return netip.AddrPort{}
	}
}

// zoneIndex resolves an IPv6 zone, either an interface name or a numeric index.
func zoneIndex(zone string) (uint32, error) {
	if zone == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n), nil
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0, fmt.Errorf("unknown zone %q: %w", zone, err)
	}
	return uint32(ifi.Index), nil // #nosec G115 // interface indexes are small
}

func zoneName(index uint32) string {
	if index == 0 {
		return ""
	}
	if ifi, err := net.InterfaceByIndex(int(index)); err == nil {
		return ifi.Name
	}
	return strconv.FormatUint(uint64(index), 10)
}

// errnoOf extracts the errno from err. Errors that carry none map to EINVAL.
func errnoOf(err error) unix.Errno {
	if err == nil {
		return 0
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EINVAL
}
