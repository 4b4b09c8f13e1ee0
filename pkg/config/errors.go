// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidName is returned when the instance name is not a DNS name
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidLoaderType is returned for an unknown loader type
	ErrInvalidLoaderType = errors.New("invalid loader type")
	// ErrInvalidLoaderInterval is returned when the loader interval is negative
	ErrInvalidLoaderInterval = errors.New("invalid loader interval")
	// ErrInvalidLoaderHttpURL is returned when the loader http url is invalid
	ErrInvalidLoaderHttpURL = errors.New("invalid loader http url")
	// ErrInvalidLoaderHttpRetryCount is returned when the loader http retry count is out of range
	ErrInvalidLoaderHttpRetryCount = errors.New("invalid loader http retry count")
	// ErrInvalidLoaderFilePath is returned when the loader file path is empty
	ErrInvalidLoaderFilePath = errors.New("invalid loader file path")
	// ErrUnexpectedStatus is returned when the runtime configuration server does not answer with 200
	ErrUnexpectedStatus = errors.New("unexpected http status")
)
