package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/savebox/internal/service"
)

// LabelHandler serves one label resource: /api/tags or /api/collections.
type LabelHandler struct {
	svc    *service.LabelService
	logger *slog.Logger
}

func NewLabelHandler(svc *service.LabelService, logger *slog.Logger) *LabelHandler {
	return &LabelHandler{svc: svc, logger: logger}
}

// HandleList returns the caller's labels.
//
// HTTP: GET /api/tags, GET /api/collections
func (h *LabelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	labels, err := h.svc.List(r.Context(), ownerKey(r))
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch "+string(h.svc.Kind()))
		return
	}

	writeSuccess(w, envelope{"data": labels})
}

// HandleCreate adds a label.
//
// HTTP: POST /api/tags, POST /api/collections
// BODY: {"name": "go", "color": "#00ADD8"}
func (h *LabelHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.LabelInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err, "Failed to create "+h.svc.Kind().Singular())
		return
	}

	label, err := h.svc.Create(r.Context(), ownerKey(r), in)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to create "+h.svc.Kind().Singular())
		return
	}

	writeSuccess(w, envelope{"data": label})
}
