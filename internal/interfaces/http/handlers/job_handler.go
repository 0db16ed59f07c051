package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/chemidr/internal/application/jobs"
)

// JobSubmitter enqueues batch resolutions.
type JobSubmitter interface {
	Submit(ctx context.Context, job jobs.ResolveJob) (string, error)
}

// JobHandler accepts asynchronous batch jobs.
type JobHandler struct {
	submitter JobSubmitter
	defaults  ResolveDefaults
	maxBody   int64
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(s JobSubmitter, defaults ResolveDefaults, maxBody int64) *JobHandler {
	return &JobHandler{submitter: s, defaults: defaults, maxBody: maxBody}
}

// SubmitResponse is returned with 202 Accepted.
type SubmitResponse struct {
	RequestID string `json:"request_id"`
}

// Submit handles POST /api/v1/jobs. The body has the shape of ResolveRequest
// with Names set.
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeAppError(w, err)
		return
	}
	job := jobs.ResolveJob{
		Names:        req.Names,
		UseRemote:    h.defaults.UseRemote,
		UseLocal:     h.defaults.UseLocal,
		WithInChIKey: req.WithInChIKey,
		Source:       "http-job",
	}
	if req.Name != "" {
		job.Names = append(job.Names, req.Name)
	}
	if req.UseRemote != nil {
		job.UseRemote = *req.UseRemote
	}
	if req.UseLocal != nil {
		job.UseLocal = *req.UseLocal
	}

	id, err := h.submitter.Submit(r.Context(), job)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, SubmitResponse{RequestID: id})
}

//Personal.AI order the ending
