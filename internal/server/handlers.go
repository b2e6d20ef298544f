// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/recommend"
	"github.com/tejzpr/learnmap/internal/tools"
)

// maxBodyBytes caps POST bodies
const maxBodyBytes = 1 << 20

// HTTPServer serves the JSON API and the MCP streamable HTTP endpoint
type HTTPServer struct {
	mcpServer *MCPServer
	tc        *tools.ToolContext
	log       zerolog.Logger
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(mcpServer *MCPServer) *HTTPServer {
	tc := mcpServer.ToolContext()
	return &HTTPServer{
		mcpServer: mcpServer,
		tc:        tc,
		log:       tc.Logger,
	}
}

// Router builds the chi router with every route registered
func (h *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(recoverer(h.log))

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/report", h.HandleReport)
		r.Get("/hotspots", h.HandleHotspots)
		r.Get("/domains", h.HandleTopDomains)
		r.Get("/patterns", h.HandlePatterns)
		r.Get("/network/{kind}", h.HandleNetwork)
		r.Get("/recommend/{learnerID}/{kind}", h.HandleRecommend)
		r.Get("/share", h.HandleShare)
		r.Get("/experiences", h.HandleFind)
		r.Post("/experiences", h.HandleCapture)
	})

	r.Handle("/mcp", mcpserver.NewStreamableHTTPServer(h.mcpServer.GetMCPServer()))

	return r
}

// HandleHealth reports liveness and the record count
func (h *HTTPServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.tc.Store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("storage health check failed")
		writeError(w, h.log, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": h.tc.Store.Len(),
	})
}

// HandleReport returns the aggregate report
func (h *HTTPServer) HandleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, h.tc.Store.Report())
}

// HandleHotspots returns locations ranked by domain diversity
func (h *HTTPServer) HandleHotspots(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", h.tc.HotspotLimit)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.tc.Store.Hotspots(limit))
}

// HandleTopDomains returns domains ranked by record count
func (h *HTTPServer) HandleTopDomains(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", h.tc.HotspotLimit)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.tc.Store.TopDomains(limit))
}

// HandlePatterns returns time and streak patterns, optionally for one learner
func (h *HTTPServer) HandlePatterns(w http.ResponseWriter, r *http.Request) {
	minDays, err := queryInt(r, "min_streak_days", 0)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.tc.Patterns(r.URL.Query().Get("learner_id"), minDays))
}

// HandleNetwork returns the domain or collaboration network
func (h *HTTPServer) HandleNetwork(w http.ResponseWriter, r *http.Request) {
	network, err := h.tc.Network(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeKindError(w, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, network)
}

// HandleRecommend answers a recommendation query for one learner
func (h *HTTPServer) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", recommend.DefaultLimit)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.tc.Recommend(chi.URLParam(r, "learnerID"), chi.URLParam(r, "kind"), limit)
	if err != nil {
		h.writeKindError(w, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, result)
}

// HandleShare returns an anonymized dataset
func (h *HTTPServer) HandleShare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	includePrivate := false
	if v := query.Get("include_private"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, h.log, http.StatusBadRequest, "include_private must be a boolean")
			return
		}
		includePrivate = parsed
	}

	records, err := h.tc.Share(query.Get("level"), includePrivate)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.log, http.StatusOK, records)
}

// HandleFind looks records up by exactly one of location, domain or learner_id
func (h *HTTPServer) HandleFind(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var records []*experience.LearningExperience
	switch {
	case query.Get("location") != "":
		records = h.tc.Store.FindByLocation(query.Get("location"))
	case query.Get("domain") != "":
		records = h.tc.Store.FindByDomain(query.Get("domain"))
	case query.Get("learner_id") != "":
		records = h.tc.Store.FindByLearner(query.Get("learner_id"))
	default:
		records = h.tc.Store.All()
	}
	writeJSON(w, h.log, http.StatusOK, records)
}

// HandleCapture decodes and captures one record or a batch of records
func (h *HTTPServer) HandleCapture(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.log, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, h.log, http.StatusBadRequest, "failed to read request body")
		return
	}

	records, err := h.tc.Decoder.DecodeJSON(body)
	var batchErr *experience.DecodeError
	if err != nil && !errors.As(err, &batchErr) {
		writeError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	if batchErr != nil {
		writeJSON(w, h.log, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid records",
			"errors": batchErr.Messages(),
		})
		return
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		id, err := h.tc.Store.Capture(r.Context(), rec)
		if err != nil {
			writeError(w, h.log, http.StatusInternalServerError, fmt.Sprintf("failed to capture %s: %v", rec.ID, err))
			return
		}
		ids = append(ids, id)
	}

	writeJSON(w, h.log, http.StatusCreated, map[string]any{
		"ids":   ids,
		"total": h.tc.Store.Len(),
	})
}

func (h *HTTPServer) writeKindError(w http.ResponseWriter, err error) {
	if errors.Is(err, tools.ErrUnknownKind) {
		writeError(w, h.log, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, h.log, http.StatusInternalServerError, err.Error())
}

// queryInt reads a non-negative integer query parameter
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
