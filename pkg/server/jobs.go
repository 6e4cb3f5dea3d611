package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/fingerprint"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/resolver"
)

// submitRequest starts an analysis job. Node is used by children jobs,
// Fingerprint by relocate jobs.
type submitRequest struct {
	hierarchyRequest
	Kind        string                   `json:"kind"`
	Node        *int                     `json:"node,omitempty"`
	Fingerprint *fingerprint.Fingerprint `json:"fingerprint,omitempty"`
}

type submitResponse struct {
	JobID string `json:"jobId"`
	Kind  string `json:"kind"`
}

// handleSubmit starts a job and answers 202 with its ID.
// POST /api/v1/jobs
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tree, err := req.tree()
	if err != nil {
		writeError(w, err)
		return
	}

	var id string
	switch req.Kind {
	case resolver.KindLayers:
		id = s.engine.SubmitLayers(s.jobCtx, tree)
	case resolver.KindRelocate:
		id = s.engine.SubmitRelocate(s.jobCtx, tree, req.Fingerprint)
	case resolver.KindChildren:
		if req.Node == nil {
			writeError(w, core.ErrMissingRequired.WithMessage("node is required for children jobs"))
			return
		}
		id = s.engine.SubmitChildren(s.jobCtx, tree, *req.Node)
	default:
		writeError(w, errBadRequest.WithMessage(fmt.Sprintf("unknown job kind %q", req.Kind)))
		return
	}

	logger.Debug("submitted %s job %s", req.Kind, id)
	w.Header().Set("Location", "/api/v1/jobs/"+id)
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: id, Kind: req.Kind})
}

// handleListJobs lists retained jobs in start order.
// GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Jobs().List())
}

// handleJobStatus returns one job.
// GET /api/v1/jobs/{id}
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Jobs().Status(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleJobEvents streams a job's events as server-sent events until the
// terminal event or client disconnect. A finished job replays its
// terminal event and closes the stream.
// GET /api/v1/jobs/{id}/events
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.engine.Jobs().Subscribe(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("encode event for job %s: %v", ev.JobID, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
