// cmd/build-manager/server.go
package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autobuild/internal/buildqueue"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
	"autobuild/internal/pipeline"
	"autobuild/internal/store"
)

const maxRequestBody = 1 << 20 // 1 MiB

type apiServer struct {
	orchestrator *pipeline.Orchestrator
	queue        *buildqueue.Queue
	executions   *store.ExecutionStore
	logger       logger.Logger
}

func newAPIServer(orchestrator *pipeline.Orchestrator, queue *buildqueue.Queue, executions *store.ExecutionStore, log logger.Logger) *apiServer {
	return &apiServer{
		orchestrator: orchestrator,
		queue:        queue,
		executions:   executions,
		logger:       log.WithFields(map[string]interface{}{"component": "http_api"}),
	}
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/builds", s.handleBuilds)
	mux.HandleFunc("/builds/queue", s.handleEnqueue)
	mux.HandleFunc("/builds/queue/status", s.handleQueueStatus)
	mux.HandleFunc("/builds/", s.handleGetExecution)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleBuilds runs a build synchronously and returns the full execution.
func (s *apiServer) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, ok := s.parseRequirement(w, r)
	if !ok {
		return
	}

	exec := s.orchestrator.Execute(r.Context(), req)
	writeJSON(w, http.StatusOK, exec)
}

// handleEnqueue appends a requirement for the background drain worker.
func (s *apiServer) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, ok := s.parseRequirement(w, r)
	if !ok {
		return
	}

	s.queue.Enqueue(req)
	s.logger.Info("build queued", map[string]interface{}{
		"service_name": req.ServiceName,
	})
	writeJSON(w, http.StatusAccepted, s.queue.Status())
}

func (s *apiServer) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.queue.Status())
}

// handleGetExecution serves a persisted execution record by id.
func (s *apiServer) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/builds/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	exec, err := s.executions.Get(r.Context(), id)
	if err != nil {
		var stdErr *stderrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == stderrors.ErrCodeResourceNotFound {
			writeError(w, http.StatusNotFound, "execution not found")
			return
		}
		s.logger.WithError(err).Error("execution lookup failed", map[string]interface{}{
			"execution_id": id,
		})
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *apiServer) parseRequirement(w http.ResponseWriter, r *http.Request) (*pipeline.BuildRequirement, bool) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return nil, false
	}

	req, err := pipeline.ParseRequirement(payload)
	if err != nil {
		var stdErr *stderrors.StandardError
		if errors.As(err, &stdErr) {
			writeError(w, http.StatusBadRequest, stdErr.Details)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid requirement payload")
		return nil, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
