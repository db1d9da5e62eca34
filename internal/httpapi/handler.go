// Package httpapi exposes the analysis pipeline over HTTP with JSON bodies
// and a uniform error envelope.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"raicompanion/internal/analysis"
	"raicompanion/internal/companion"
	"raicompanion/internal/dispatch"
	"raicompanion/internal/parse"
	"raicompanion/internal/provider"
)

type Handler struct {
	app *companion.App
}

func New(app *companion.App) *Handler {
	return &Handler{app: app}
}

func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", h.analyze)
	mux.HandleFunc("GET /api/models", h.models)
	mux.HandleFunc("GET /api/analyses", h.analyses)
	mux.HandleFunc("GET /healthz", h.healthz)
	return mux
}

type analyzeRequest struct {
	Input    string   `json:"input"`
	Mode     string   `json:"mode"`
	Provider string   `json:"provider"`
	Modules  []string `json:"modules"`
}

type errorEnvelope struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	res, err := h.app.Engine.Analyze(r.Context(), companion.Request{
		Input:    req.Input,
		Mode:     req.Mode,
		Provider: req.Provider,
		Modules:  req.Modules,
	})
	if err != nil {
		status, kind := classify(err)
		log.Printf("httpapi analyze outcome=error kind=%s err=%q", kind, err)
		writeError(w, status, kind, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  h.app.Registry.Available(),
		"default": h.app.Config.Analysis.DefaultModel,
	})
}

func (h *Handler) analyses(w http.ResponseWriter, r *http.Request) {
	if h.app.Store == nil {
		writeError(w, http.StatusNotImplemented, "history_disabled", "no database configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.app.Store.ListAnalyses(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": rows})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.app.Store != nil {
		if err := h.app.Store.Ping(r.Context()); err != nil {
			body["database"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}
	if h.app.Cache != nil {
		if err := h.app.Cache.Ping(r.Context()); err != nil {
			body["redis"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["redis"] = "ok"
	}
	calls, failures := h.app.Observer.Counters()
	body["provider_calls"] = calls
	body["provider_failures"] = failures
	writeJSON(w, http.StatusOK, body)
}

// classify maps pipeline errors to HTTP status and error kind. Caller
// mistakes are 4xx; upstream model trouble is 502/504.
func classify(err error) (int, string) {
	var tooLong *companion.InputTooLongError
	var tooMany *analysis.TooManyModulesError
	var dispatchErr *dispatch.Error

	switch {
	case errors.Is(err, companion.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.As(err, &tooLong):
		return http.StatusBadRequest, "input_too_long"
	case errors.Is(err, analysis.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	case errors.As(err, &tooMany):
		return http.StatusBadRequest, "too_many_modules"
	case errors.As(err, &dispatchErr):
		switch dispatchErr.Kind {
		case dispatch.KindUnknownProvider:
			return http.StatusBadRequest, string(dispatchErr.Kind)
		case dispatch.KindOverallTimeout, provider.Timeout:
			return http.StatusGatewayTimeout, string(dispatchErr.Kind)
		default:
			return http.StatusBadGateway, string(dispatchErr.Kind)
		}
	case errors.Is(err, parse.ErrMalformedResponse):
		return http.StatusBadGateway, "malformed_response"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	var env errorEnvelope
	env.Error.Kind = kind
	env.Error.Message = message
	writeJSON(w, status, env)
}
