// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/noldarim/fuzzy/internal/service"
	"github.com/noldarim/fuzzy/pkg/fuzzy/definition"
	"github.com/noldarim/fuzzy/pkg/fuzzy/engine"
	"github.com/noldarim/fuzzy/pkg/fuzzy/fuzzyerr"
)

const maxBatchWorkers = 32

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	svc *service.EngineService
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.EngineService) *Handlers {
	return &Handlers{svc: svc}
}

type errorResponse struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}

// EngineSummary is an element of the engine listing.
type EngineSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

// ProcessRequest is the body of a pass. A null input is a missing value.
type ProcessRequest struct {
	Inputs map[string]service.Value `json:"inputs"`
}

// BatchRequest is the body of a batch of passes.
type BatchRequest struct {
	Inputs  []map[string]service.Value `json:"inputs"`
	Workers int                        `json:"workers,omitempty"`
}

// BatchResponse holds the results in the order of the request.
type BatchResponse struct {
	Results []service.Result `json:"results"`
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		getLog().Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// statusOf maps service and engine errors to HTTP statuses.
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrEngineNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownVariable):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case fuzzyerr.IsParse(err), fuzzyerr.IsConfiguration(err), fuzzyerr.IsEvaluation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		getLog().Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg(msg)
	}
	writeJSON(w, status, errorResponse{Error: msg, Context: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large", Context: err.Error()})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Context: err.Error()})
		return false
	}
	return true
}

func toFloats(inputs map[string]service.Value) map[string]float64 {
	return lo.MapValues(inputs, func(v service.Value, _ string) float64 { return float64(v) })
}

// --- handlers ---

// Health handles GET /healthz
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "engines": len(h.svc.Names())})
}

// ListEngines handles GET /api/v1/engines
func (h *Handlers) ListEngines(w http.ResponseWriter, r *http.Request) {
	engines := make([]EngineSummary, 0)
	for _, name := range h.svc.Names() {
		info, err := h.svc.Describe(name)
		if err != nil {
			// Removed since Names was read.
			continue
		}
		engines = append(engines, EngineSummary{Name: info.Name, Description: info.Description, Type: info.Type})
	}
	writeJSON(w, http.StatusOK, engines)
}

// GetEngine handles GET /api/v1/engines/{name}
func (h *Handlers) GetEngine(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Describe(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, "Failed to describe engine", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// CreateEngine handles POST /api/v1/engines. The body is a YAML (or JSON)
// engine definition; an engine of the same name is replaced.
func (h *Handlers) CreateEngine(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, "Failed to read engine definition", err)
		return
	}
	d, err := definition.Parse(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid engine definition", Context: err.Error()})
		return
	}
	info, err := h.svc.LoadDefinition(d)
	if err != nil {
		writeError(w, r, "Failed to build engine", err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// DeleteEngine handles DELETE /api/v1/engines/{name}
func (h *Handlers) DeleteEngine(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(chi.URLParam(r, "name")); err != nil {
		writeError(w, r, "Failed to remove engine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Process handles POST /api/v1/engines/{name}/process
func (h *Handlers) Process(w http.ResponseWriter, r *http.Request) {
	var body ProcessRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.Process(r.Context(), chi.URLParam(r, "name"), toFloats(body.Inputs))
	if err != nil {
		writeError(w, r, "Failed to process engine", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ProcessBatch handles POST /api/v1/engines/{name}/batch
func (h *Handlers) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	workers := body.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, maxBatchWorkers)

	batch := lo.Map(body.Inputs, func(in map[string]service.Value, _ int) map[string]float64 { return toFloats(in) })
	results, err := h.svc.ProcessBatch(r.Context(), chi.URLParam(r, "name"), batch, workers)
	if err != nil {
		writeError(w, r, "Failed to process batch", err)
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

// Restart handles POST /api/v1/engines/{name}/restart
func (h *Handlers) Restart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Restart(chi.URLParam(r, "name")); err != nil {
		writeError(w, r, "Failed to restart engine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reload handles POST /api/v1/reload. Engines that fail to rebuild keep
// running; the failures are reported alongside the served names.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{}
	if err := h.svc.Reload(); err != nil {
		resp["error"] = "Some engines failed to reload"
		resp["context"] = err.Error()
	}
	resp["engines"] = h.svc.Names()
	writeJSON(w, http.StatusOK, resp)
}
