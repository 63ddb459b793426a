package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/savebox/internal/auth"
	"github.com/sakif/savebox/internal/service"
)

type InterestsHandler struct {
	svc    *service.InterestService
	logger *slog.Logger
}

func NewInterestsHandler(svc *service.InterestService, logger *slog.Logger) *InterestsHandler {
	return &InterestsHandler{svc: svc, logger: logger}
}

// HandleGet returns the caller's interests.
//
// HTTP: GET /api/interests
// RESPONSE: {"success": true, "data": [...], "hasInterests": true, "username": "sakif"}
func (h *InterestsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	interests, has, err := h.svc.Get(r.Context(), ownerKey(r))
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch interests")
		return
	}

	username := ""
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		username = id.Username
		if username == "" {
			username = id.Key()
		}
	}

	writeSuccess(w, envelope{
		"data":         interests,
		"hasInterests": has,
		"username":     username,
	})
}

// HandleSave replaces the caller's interests.
//
// HTTP: POST /api/interests
// BODY: {"interests": ["go", "distributed systems"]}
func (h *InterestsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var in service.InterestsInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err, "Failed to save interests")
		return
	}

	if _, err := h.svc.Save(r.Context(), ownerKey(r), in); err != nil {
		writeError(w, r, h.logger, err, "Failed to save interests")
		return
	}

	writeSuccess(w, nil)
}
