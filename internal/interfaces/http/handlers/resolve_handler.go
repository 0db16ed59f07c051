package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/chemidr/internal/application/resolver"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// ResolveDefaults fills source switches omitted from a request.
type ResolveDefaults struct {
	UseRemote bool
	UseLocal  bool
}

// ResolveHandler exposes the resolver service.
type ResolveHandler struct {
	svc      resolver.Service
	defaults ResolveDefaults
	maxBody  int64
	maxBatch int
	logger   logging.Logger
}

// NewResolveHandler creates a ResolveHandler. maxBatch bounds the names in
// one synchronous request; larger batches belong on the job queue.
func NewResolveHandler(svc resolver.Service, defaults ResolveDefaults, maxBody int64, maxBatch int, logger logging.Logger) *ResolveHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ResolveHandler{svc: svc, defaults: defaults, maxBody: maxBody, maxBatch: maxBatch, logger: logger}
}

// ResolveRequest is the body of POST /api/v1/resolve. Exactly one of Name and
// Names must be set.
type ResolveRequest struct {
	Name         string   `json:"name,omitempty"`
	Names        []string `json:"names,omitempty"`
	UseRemote    *bool    `json:"use_remote,omitempty"`
	UseLocal     *bool    `json:"use_local,omitempty"`
	WithInChIKey bool     `json:"with_inchikey,omitempty"`
}

func (h *ResolveHandler) sources(req *ResolveRequest) (remote, local bool) {
	remote, local = h.defaults.UseRemote, h.defaults.UseLocal
	if req.UseRemote != nil {
		remote = *req.UseRemote
	}
	if req.UseLocal != nil {
		local = *req.UseLocal
	}
	return remote, local
}

// Resolve handles POST /api/v1/resolve.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeAppError(w, err)
		return
	}
	remote, local := h.sources(&req)

	switch {
	case req.Name != "" && len(req.Names) > 0:
		writeAppError(w, errors.InvalidParam("set either name or names, not both"))
	case req.Name != "":
		res, err := h.svc.Resolve(r.Context(), &resolver.ResolveInput{
			Name:         req.Name,
			UseRemote:    remote,
			UseLocal:     local,
			WithInChIKey: req.WithInChIKey,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case len(req.Names) > 0:
		if h.maxBatch > 0 && len(req.Names) > h.maxBatch {
			writeAppError(w, errors.InvalidParam("too many names for a synchronous request; submit a job instead"))
			return
		}
		out, err := h.svc.ResolveBatch(r.Context(), &resolver.BatchInput{
			Names:        req.Names,
			UseRemote:    remote,
			UseLocal:     local,
			WithInChIKey: req.WithInChIKey,
			Source:       "http",
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		writeAppError(w, errors.New(errors.ErrCodeInvalidQuery, "name or names is required"))
	}
}

// InChIKeyRequest is the body of POST /api/v1/inchikeys.
type InChIKeyRequest struct {
	CIDs       []int64 `json:"cids"`
	PrefixOnly bool    `json:"prefix_only,omitempty"`
	Mode       string  `json:"mode,omitempty"`
}

// InChIKeys handles POST /api/v1/inchikeys.
func (h *ResolveHandler) InChIKeys(w http.ResponseWriter, r *http.Request) {
	var req InChIKeyRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeAppError(w, err)
		return
	}
	out, err := h.svc.InChIKeys(r.Context(), &resolver.InChIKeyInput{
		CIDs:       req.CIDs,
		PrefixOnly: req.PrefixOnly,
		Mode:       req.Mode,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// MeSH handles GET /api/v1/mesh/{meshID}.
func (h *ResolveHandler) MeSH(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.CrossReferenceMeSH(r.Context(), chi.URLParam(r, "meshID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// FindStored handles GET /api/v1/results?query=.
func (h *ResolveHandler) FindStored(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.FindStored(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListRun handles GET /api/v1/runs/{runID}.
func (h *ResolveHandler) ListRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	results, err := h.svc.ListRun(r.Context(), runID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"results": results,
	})
}

//Personal.AI order the ending
