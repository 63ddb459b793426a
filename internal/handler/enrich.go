package handler

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/service"
)

// DefaultMaxImageBytes is the upload limit when none is configured.
const DefaultMaxImageBytes = 10 << 20

// EnrichHandler serves the routes that only call providers and store nothing.
type EnrichHandler struct {
	svc           *service.EnrichService
	maxImageBytes int64
	logger        *slog.Logger
}

func NewEnrichHandler(svc *service.EnrichService, maxImageBytes int64, logger *slog.Logger) *EnrichHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &EnrichHandler{svc: svc, maxImageBytes: maxImageBytes, logger: logger}
}

// HandleAnalyzeImage titles and summarizes an image.
//
// HTTP: POST /api/images/analyze
// BODY: multipart/form-data with an "image" file part, or
//
//	{"image": "data:image/png;base64,..."}   (a bare base64 string also works)
func (h *EnrichHandler) HandleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	image, mimeType, err := h.readImage(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to analyze image")
		return
	}

	analysis, err := h.svc.AnalyzeImage(r.Context(), image, mimeType)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to analyze image")
		return
	}

	writeSuccess(w, envelope{"title": analysis.Title, "summary": analysis.Summary})
}

// HandleMetadata scrapes Open Graph metadata for a URL.
//
// HTTP: POST /api/metadata
// BODY: {"url": "https://..."}
func (h *EnrichHandler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	var in service.MetadataInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err, "Failed to extract metadata")
		return
	}

	meta, err := h.svc.ExtractMetadata(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to extract metadata")
		return
	}

	writeSuccess(w, envelope{"metadata": meta})
}

type socialMediaRequest struct {
	Metadata map[string]any `json:"metadata"`
}

// HandleSocialMedia says whether scraped metadata belongs to a social
// media site.
//
// HTTP: POST /api/social-media/verify
// BODY: {"metadata": {...}}
func (h *EnrichHandler) HandleSocialMedia(w http.ResponseWriter, r *http.Request) {
	var req socialMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err, "Failed to verify social media")
		return
	}

	isSocial, err := h.svc.IsSocialMedia(r.Context(), req.Metadata)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to verify social media")
		return
	}

	writeJSON(w, http.StatusOK, envelope{"isSocialMedia": isSocial})
}

// HandleNote drafts a title and summary for a note.
//
// HTTP: POST /api/notes
// BODY: {"content": "..."}
func (h *EnrichHandler) HandleNote(w http.ResponseWriter, r *http.Request) {
	var in service.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err, "Failed to process note")
		return
	}

	title, summary, err := h.svc.DraftNote(r.Context(), ownerKey(r), in)
	if err != nil {
		writeError(w, r, h.logger, err, "Failed to process note")
		return
	}

	writeJSON(w, http.StatusOK, envelope{"title": title, "summary": summary})
}

type imageRequest struct {
	Image string `json:"image"`
}

// readImage returns the uploaded bytes and their MIME type, from either a
// multipart form or a JSON body.
func (h *EnrichHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+(1<<20))
		file, header, err := r.FormFile("image")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, "", tooLarge()
			}
			return nil, "", apperror.ValidationFailed("image", "image is required")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
		if err != nil {
			return nil, "", apperror.ValidationFailed("image", "could not read image")
		}
		if int64(len(data)) > h.maxImageBytes {
			return nil, "", tooLarge()
		}
		return data, sniff(data, header.Header.Get("Content-Type")), nil
	}

	// Base64 inflates by 4/3; leave room for the JSON around it.
	var req imageRequest
	if err := decodeJSONLimit(w, r, &req, h.maxImageBytes/3*4+(1<<20)); err != nil {
		return nil, "", err
	}
	data, declared, err := decodeDataURI(req.Image)
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, "", tooLarge()
	}
	return data, sniff(data, declared), nil
}

// decodeDataURI accepts "data:<mime>;base64,<payload>" or a bare base64
// payload and returns the bytes and the declared MIME type, if any.
func decodeDataURI(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", apperror.ValidationFailed("image", "image is required")
	}

	var declared string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", apperror.ValidationFailed("image", "image must be a base64 data URI")
		}
		declared = strings.TrimSuffix(meta, ";base64")
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", apperror.ValidationFailed("image", "image is not valid base64")
	}
	return data, declared, nil
}

// sniff prefers the declared type unless it is missing or generic.
func sniff(data []byte, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

func tooLarge() error {
	return apperror.ValidationFailed("image", "image is too large")
}
