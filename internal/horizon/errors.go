// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"errors"
	"fmt"
)

// Sentinel errors for the resolution failures. The typed errors below
// match them with [errors.Is].
var (
	// ErrInvalidFamily is returned for a family selector other than auto, 4 or 6.
	ErrInvalidFamily = errors.New("invalid address family")
	// ErrUnknownService is returned when the service cannot be resolved even against the wildcard address.
	ErrUnknownService = errors.New("unknown TCP service")
	// ErrUnknownHost is returned when the host cannot be resolved although the service is valid.
	ErrUnknownHost = errors.New("unknown host")
	// ErrIncompatibleFamily is returned when no source address shares a family with any destination.
	ErrIncompatibleFamily = errors.New("incompatible address family")
	// ErrCannotBind is returned when no candidate source address could be bound.
	ErrCannotBind = errors.New("cannot bind source address")
	// ErrNoRoute is returned when no destination/source combination yields a local route.
	ErrNoRoute = errors.New("no route to destination")
	// ErrProbeSetup is returned when a probe fails in the local socket layer.
	ErrProbeSetup = errors.New("probe setup failed")
)

// ProbeSetupError stops a search whose probe failed before reaching the network.
type ProbeSetupError struct {
	Outcome Outcome
}

func (e *ProbeSetupError) Error() string {
	return fmt.Sprintf("probe at TTL %d failed locally: %s", e.Outcome.TTL, describe(e.Outcome.Errno))
}

func (e *ProbeSetupError) Is(target error) bool { return target == ErrProbeSetup }

func (e *ProbeSetupError) Unwrap() error { return e.Outcome.Errno }

// UnknownServiceError is returned when the service lookup fails.
type UnknownServiceError struct {
	Service string
	Err     error
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown TCP service %q", e.Service)
}

func (e *UnknownServiceError) Is(target error) bool { return target == ErrUnknownService }

func (e *UnknownServiceError) Unwrap() error { return e.Err }

// UnknownHostError is returned when the host lookup fails while the service is known.
type UnknownHostError struct {
	Host string
	Err  error
}

func (e *UnknownHostError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot resolve %q", e.Host)
	}
	return fmt.Sprintf("cannot resolve %q: %v", e.Host, e.Err)
}

func (e *UnknownHostError) Is(target error) bool { return target == ErrUnknownHost }

func (e *UnknownHostError) Unwrap() error { return e.Err }

// IncompatibleFamilyError is returned when the families of the host and the source never match.
type IncompatibleFamilyError struct {
	Host   string
	Source string
}

func (e *IncompatibleFamilyError) Error() string {
	return fmt.Sprintf("address family of %q is incompatible with %q", e.Host, e.Source)
}

func (e *IncompatibleFamilyError) Is(target error) bool { return target == ErrIncompatibleFamily }

// CannotBindError is returned when every candidate source address failed to bind.
type CannotBindError struct {
	Source string
	Err    error
}

func (e *CannotBindError) Error() string {
	return fmt.Sprintf("cannot bind to any address of %q", e.Source)
}

func (e *CannotBindError) Is(target error) bool { return target == ErrCannotBind }

func (e *CannotBindError) Unwrap() error { return e.Err }

// NoRouteError is returned when no candidate pair could be connected.
// Source is empty when no explicit source was requested.
type NoRouteError struct {
	Host   string
	Source string
	Err    error
}

func (e *NoRouteError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("cannot connect to any address of %q", e.Host)
	}
	return fmt.Sprintf("cannot connect to any address of %q from any address of %q", e.Host, e.Source)
}

func (e *NoRouteError) Is(target error) bool { return target == ErrNoRoute }

func (e *NoRouteError) Unwrap() error { return e.Err }

// errBind marks a route selection failure that happened while binding the source address.
var errBind = errors.New("bind failed")
