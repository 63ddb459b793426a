// Package handler contains the HTTP handlers of the savebox API.
//
// HANDLER RESPONSIBILITIES:
//  1. Decode the request (JSON body, multipart form)
//  2. Read the owner key the auth middleware put in the context
//  3. Call the service
//  4. Write the JSON envelope (see response.go)
//
// Handlers hold no business rules. Validation, enrichment and owner
// scoping all live in the service layer.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/savebox/internal/service"
)

// BookmarkHandler serves saving, summarizing and listing bookmarks.
type BookmarkHandler struct {
	svc    *service.BookmarkService
	logger *slog.Logger
}

func NewBookmarkHandler(svc *service.BookmarkService, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{svc: svc, logger: logger}
}

// HandleSave stores a bookmark with its embeddings.
//
// HTTP: POST /api/bookmarks
// BODY: {"title": "...", "summary": "...", "url": "...", "tags": [...], "collections": [...]}
func (h *BookmarkHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var in service.SaveBookmarkInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err, "Failed to save bookmark")
		return
	}

	b, err := h.svc.Save(r.Context(), ownerKey(r), in)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to save bookmark")
		return
	}

	writeSuccess(w, envelope{"bookmarkId": b.ID})
}

// HandleSummary generates a summary for a URL before it is saved.
//
// HTTP: POST /api/bookmarks/summary
// BODY: {"url": "https://..."}
func (h *BookmarkHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var in service.SummarizeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err, "Failed to generate summary")
		return
	}

	summary, err := h.svc.Summarize(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to generate summary")
		return
	}

	writeJSON(w, http.StatusOK, envelope{"summary": summary})
}

// HandleLibrary lists the caller's bookmarks, newest first. Anonymous
// callers get an empty list.
//
// HTTP: GET /api/library
func (h *BookmarkHandler) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.svc.Library(r.Context(), ownerKey(r))
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to fetch library")
		return
	}

	writeSuccess(w, envelope{"data": bookmarks})
}
