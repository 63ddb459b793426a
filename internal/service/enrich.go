package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/enrich"
	"github.com/sakif/savebox/internal/opengraph"
	"github.com/sakif/savebox/internal/validation"
)

// MetadataInput is the body of a metadata extraction request.
type MetadataInput struct {
	URL string `json:"url" validate:"required,url"`
}

// NoteInput is the body of a note drafting request.
type NoteInput struct {
	Content string `json:"content" validate:"required,max=200000"`
}

// EnrichService exposes the stateless enrichment routes: nothing here is
// persisted.
type EnrichService struct {
	enricher Enrichment
	validate *validation.Validator
	logger   *slog.Logger
}

func NewEnrichService(enricher Enrichment, v *validation.Validator, logger *slog.Logger) *EnrichService {
	return &EnrichService{enricher: enricher, validate: v, logger: logger}
}

// AnalyzeImage titles and summarizes an uploaded image.
func (s *EnrichService) AnalyzeImage(ctx context.Context, image []byte, mime string) (enrich.ImageAnalysis, error) {
	if len(image) == 0 {
		return enrich.ImageAnalysis{}, apperror.ValidationFailed("image", "image is required")
	}
	if mime != "" && !strings.HasPrefix(mime, "image/") {
		return enrich.ImageAnalysis{}, apperror.ValidationFailed("image", "file must be an image")
	}
	return s.enricher.AnalyzeImage(ctx, image, mime)
}

// ExtractMetadata scrapes link-preview metadata.
func (s *EnrichService) ExtractMetadata(ctx context.Context, in MetadataInput) (opengraph.Metadata, error) {
	in.URL = strings.TrimSpace(in.URL)
	if err := s.validate.Validate(in); err != nil {
		return opengraph.Metadata{}, err
	}
	return s.enricher.ExtractMetadata(ctx, in.URL)
}

// IsSocialMedia classifies scraped metadata. Any answer other than an
// exact "yes" is false; a failed provider call is an enrichment error.
func (s *EnrichService) IsSocialMedia(ctx context.Context, metadata map[string]any) (bool, error) {
	return s.enricher.ClassifySocialMedia(ctx, metadata)
}

// DraftNote suggests a title and summary for a note. The owner must be
// signed in even though nothing is stored.
func (s *EnrichService) DraftNote(ctx context.Context, ownerKey string, in NoteInput) (title, summary string, err error) {
	if err := requireOwner(ownerKey); err != nil {
		return "", "", err
	}
	if err := s.validate.Validate(in); err != nil {
		return "", "", err
	}

	title, summary, err = s.enricher.DraftNote(ctx, in.Content)
	if err != nil {
		return "", "", err
	}

	s.logger.Info("note drafted", "owner", ownerKey, "chars", len(in.Content))
	return title, summary, nil
}
