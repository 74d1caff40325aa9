package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"goszakup/internal/log"
	"goszakup/internal/services"
	"goszakup/internal/storage"
)

// inlineTimeout bounds a report run started from a request.
const inlineTimeout = 10 * time.Minute

type reportAccepted struct {
	RequestID string   `json:"request_id"`
	Status    string   `json:"status"`
	RunID     string   `json:"run_id,omitempty"`
	SheetRef  string   `json:"sheet_ref,omitempty"`
	Partial   bool     `json:"partial,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Shared    bool     `json:"shared,omitempty"`
}

type runList struct {
	Runs  []storage.Run `json:"runs"`
	Count int           `json:"count"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]bool{
		"storage": s.runs != nil,
		"queue":   s.publisher != nil,
		"inline":  s.runner != nil,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, r, http.StatusServiceUnavailable, "run storage is disabled")
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List runs failed", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, r, http.StatusOK, runList{Runs: runs, Count: len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, r, http.StatusServiceUnavailable, "run storage is disabled")
		return
	}
	id := mux.Vars(r)["id"]

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, storage.ErrRunNotFound) {
		writeError(w, r, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Get run failed", log.FieldRunID, id, log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not load run")
		return
	}
	writeJSON(w, r, http.StatusOK, run)
}

// handleCreateReport queues the request when a publisher is configured and
// falls back to running it inline.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	req, err := parseReportRequest(r, s.defaults)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := req.Key()
	if wait, ok := s.limiter.allowScope(key, s.metrics); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		writeError(w, r, http.StatusTooManyRequests, "report for this scope was triggered recently")
		return
	}

	if s.publisher != nil {
		err := s.publisher.PublishReportRequest(r.Context(), req)
		if err == nil {
			writeJSON(w, r, http.StatusAccepted, reportAccepted{RequestID: req.RequestID, Status: "queued"})
			return
		}
		logger.WarnContext(r.Context(), "Queueing report request failed", "request_id", req.RequestID, log.FieldError, err)
		if s.runner == nil {
			s.limiter.releaseScope(key)
			writeError(w, r, http.StatusServiceUnavailable, "report queue unavailable")
			return
		}
	}
	if s.runner == nil {
		s.limiter.releaseScope(key)
		writeError(w, r, http.StatusServiceUnavailable, "report runs are disabled")
		return
	}

	// The run outlives a dropped client connection.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), inlineTimeout)
	defer cancel()

	outcome, shared, err := s.runner.Run(ctx, req)
	runID := ""
	switch {
	case errors.Is(err, services.ErrRunNotSaved) && outcome != nil:
		logger.ErrorContext(r.Context(), "Inline report written but run not stored", "request_id", req.RequestID, log.FieldError, err)
	case err != nil:
		logger.ErrorContext(r.Context(), "Inline report failed", "request_id", req.RequestID, log.FieldError, err)
		s.limiter.releaseScope(key)
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	default:
		runID = outcome.RunID
	}
	writeJSON(w, r, http.StatusCreated, reportAccepted{
		RequestID: req.RequestID,
		Status:    "done",
		RunID:     runID,
		SheetRef:  outcome.SheetRef,
		Partial:   outcome.Report.Partial(),
		Warnings:  outcome.Report.Warnings,
		Shared:    shared,
	})
}
