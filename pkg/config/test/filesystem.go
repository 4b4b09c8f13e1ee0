// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test provides file system fakes for the config loader tests.
package test

import (
	"io"
	"io/fs"
)

// MockFS is an [fs.FS] whose Open is backed by OpenFunc.
type MockFS struct {
	OpenFunc func(name string) (fs.File, error)
}

func (m *MockFS) Open(name string) (fs.File, error) {
	return m.OpenFunc(name)
}

// MockFile is an in-memory [fs.File] serving Content.
type MockFile struct {
	Content []byte
	// CloseFunc replaces the default Close, which always succeeds.
	CloseFunc func() error
	// ReadErr is returned by Read once it is set.
	ReadErr error

	offset int
}

func (mf *MockFile) Read(b []byte) (int, error) {
	if mf.ReadErr != nil {
		return 0, mf.ReadErr
	}
	if mf.offset >= len(mf.Content) {
		return 0, io.EOF
	}
	n := copy(b, mf.Content[mf.offset:])
	mf.offset += n
	return n, nil
}

func (mf *MockFile) Close() error {
	if mf.CloseFunc != nil {
		return mf.CloseFunc()
	}
	return nil
}

func (mf *MockFile) Stat() (fs.FileInfo, error) {
	return nil, nil
}
