// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import "fmt"

// ErrInvalidMethod is returned for routes with a method the read-only API does not serve.
type ErrInvalidMethod struct {
	Method string
	Path   string
}

func (e ErrInvalidMethod) Error() string {
	return fmt.Sprintf("method %q of route %q is not supported", e.Method, e.Path)
}

// ErrServe is returned when the server stops with an error.
type ErrServe struct {
	Addr string
	Err  error
}

func (e ErrServe) Error() string {
	return fmt.Sprintf("failed to serve api on %s: %v", e.Addr, e.Err)
}

func (e ErrServe) Unwrap() error {
	return e.Err
}
