// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestAPI_RegisterRoutes(t *testing.T) {
	tests := []struct {
		name       string
		routes     []Route
		method     string
		path       string
		wantStatus int
		wantBody   string
		wantErr    bool
	}{
		{
			name:       "get route",
			routes:     []Route{{Path: "/v1/results", Method: http.MethodGet, Handler: okHandler("results")}},
			method:     http.MethodGet,
			path:       "/v1/results",
			wantStatus: http.StatusOK,
			wantBody:   "results",
		},
		{
			name:       "health endpoint",
			method:     http.MethodGet,
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "wildcard method",
			routes:     []Route{{Path: "/metrics", Method: "*", Handler: okHandler("metrics")}},
			method:     http.MethodPost,
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "metrics",
		},
		{
			name:       "method not allowed",
			routes:     []Route{{Path: "/v1/results", Method: http.MethodGet, Handler: okHandler("results")}},
			method:     http.MethodDelete,
			path:       "/v1/results",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown path",
			method:     http.MethodGet,
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "unsupported method",
			routes:  []Route{{Path: "/v1/results", Method: http.MethodPost, Handler: okHandler("")}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Config{ListeningAddress: ":0"}).(*api)
			err := a.RegisterRoutes(t.Context(), tt.routes...)
			if tt.wantErr {
				var invalid ErrInvalidMethod
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, http.MethodPost, invalid.Method)
				return
			}
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAPI_RegisterRoutes_recoversPanics(t *testing.T) {
	a := New(Config{ListeningAddress: ":0"}).(*api)
	require.NoError(t, a.RegisterRoutes(t.Context(), Route{
		Path:    "/panic",
		Method:  http.MethodGet,
		Handler: func(http.ResponseWriter, *http.Request) { panic("boom") },
	}))

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAPI_Run(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	a := New(Config{ListeningAddress: addr})
	require.NoError(t, a.RegisterRoutes(t.Context()))

	ctx, cancel := context.WithCancel(t.Context())
	cErr := make(chan error, 1)
	go func() { cErr <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz") //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(b) == "ok"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-cErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("api did not stop after the context was canceled")
	}
}

func TestAPI_Run_listenFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	a := New(Config{ListeningAddress: l.Addr().String()})
	err = a.Run(t.Context())
	var serveErr ErrServe
	require.ErrorAs(t, err, &serveErr)
	assert.Equal(t, l.Addr().String(), serveErr.Addr)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "port only", cfg: Config{ListeningAddress: ":8080"}},
		{name: "host and port", cfg: Config{ListeningAddress: "127.0.0.1:8080"}},
		{name: "missing port", cfg: Config{ListeningAddress: "localhost"}, wantErr: true},
		{name: "tls with files", cfg: Config{ListeningAddress: ":8443", Tls: TLSConfig{Enabled: true, CertPath: "c.pem", KeyPath: "k.pem"}}},
		{name: "tls without key", cfg: Config{ListeningAddress: ":8443", Tls: TLSConfig{Enabled: true, CertPath: "c.pem"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}
