// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg/api"
	"gopkg.in/yaml.v3"
)

const (
	resultsPath = "/v1/results"
	historyPath = "/v1/history"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

type encoder interface {
	Encode(v any) error
}

// routes returns the routes of the monitor API. The history route is only served
// when the search history is enabled.
func (m *Monitor) routes() []api.Route {
	routes := []api.Route{
		{Path: "/openapi", Method: http.MethodGet, Handler: m.handleOpenAPI},
		{Path: resultsPath, Method: http.MethodGet, Handler: m.handleResults},
		{Path: resultsPath + "/{check}", Method: http.MethodGet, Handler: m.handleCheckResult},
		{
			Path:   "/metrics",
			Method: "*",
			Handler: promhttp.HandlerFor(
				m.metrics.GetRegistry(),
				promhttp.HandlerOpts{Registry: m.metrics.GetRegistry()},
			).ServeHTTP,
		},
	}
	if m.history != nil {
		routes = append(routes, api.Route{Path: historyPath + "/{target}", Method: http.MethodGet, Handler: m.handleHistory})
	}
	return routes
}

// handleOpenAPI serves the openapi document as json, or as yaml if requested
// by the format query parameter or the Accept header.
func (m *Monitor) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	doc, err := m.controller.GenerateCheckSpecs(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to generate openapi document", "error", err)
		var schemaErr *ErrCreateOpenapiSchema
		if errors.As(err, &schemaErr) {
			http.Error(w, schemaErr.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	b, err := json.Marshal(&doc)
	if err != nil {
		log.ErrorContext(ctx, "Failed to marshal openapi document", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !wantsYAML(r) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
		return
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		log.ErrorContext(ctx, "Failed to convert openapi document", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	writeEncoded(w, r, enc, generic)
}

// handleResults serves the latest result of every check.
func (m *Monitor) handleResults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeEncoded(w, r, json.NewEncoder(w), m.db.List())
}

// handleCheckResult serves the latest result of one check.
func (m *Monitor) handleCheckResult(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "check")
	res, ok := m.db.Get(name)
	if !ok {
		logger.FromContext(r.Context()).DebugContext(r.Context(), "No result for check", "check", name)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeEncoded(w, r, json.NewEncoder(w), res)
}

// handleHistory serves the latest searches of a target, newest first.
func (m *Monitor) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := url.PathUnescape(chi.URLParam(r, "target"))
	if err != nil || target == "" {
		http.Error(w, "invalid target", http.StatusBadRequest)
		return
	}

	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 || limit > maxHistoryLimit {
			http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
	}

	searches, err := m.history.Searches(ctx, target, limit)
	if err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to query search history", "target", target, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeEncoded(w, r, json.NewEncoder(w), searches)
}

func writeEncoded(w http.ResponseWriter, r *http.Request, enc encoder, v any) {
	if err := enc.Encode(v); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func wantsYAML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "yaml")
	}
	return strings.Contains(r.Header.Get("Accept"), "yaml")
}
