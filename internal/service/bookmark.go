package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/savebox/internal/model"
	"github.com/sakif/savebox/internal/repository"
	"github.com/sakif/savebox/internal/validation"
)

// SaveBookmarkInput is the user-supplied part of a bookmark. Tags and
// Collections are label names, not ids.
type SaveBookmarkInput struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Summary     string   `json:"summary" validate:"required,max=10000"`
	URL         string   `json:"url" validate:"omitempty,url"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags" validate:"max=100"`
	Collections []string `json:"collections" validate:"max=100"`
}

// SummarizeInput is the body of a summary request.
type SummarizeInput struct {
	URL string `json:"url" validate:"required,url"`
}

// BookmarkService saves bookmarks with their embeddings and serves the
// per-owner library.
type BookmarkService struct {
	repo     repository.BookmarkRepository
	enricher Enrichment
	validate *validation.Validator
	logger   *slog.Logger
}

func NewBookmarkService(repo repository.BookmarkRepository, enricher Enrichment, v *validation.Validator, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		repo:     repo,
		enricher: enricher,
		validate: v,
		logger:   logger,
	}
}

// Save validates in, embeds its title and summary, and stores the bookmark.
//
// Both embeddings must succeed before anything is written. Validation
// happens first so a bad request never costs a provider call.
func (s *BookmarkService) Save(ctx context.Context, ownerKey string, in SaveBookmarkInput) (*model.Bookmark, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	in.URL = strings.TrimSpace(in.URL)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	embTitle, embSummary, err := s.enricher.EmbedPair(ctx, in.Title, in.Summary)
	if err != nil {
		return nil, err
	}

	b := &model.Bookmark{
		OwnerKey:         ownerKey,
		Title:            in.Title,
		Summary:          in.Summary,
		URL:              in.URL,
		Image:            strings.TrimSpace(in.Image),
		Tags:             cleanList(in.Tags),
		Collections:      cleanList(in.Collections),
		EmbeddingTitle:   embTitle,
		EmbeddingSummary: embSummary,
	}
	if err := s.repo.CreateBookmark(ctx, b); err != nil {
		return nil, fmt.Errorf("saving bookmark: %w", err)
	}

	s.logger.Info("bookmark saved",
		"id", b.ID,
		"owner", ownerKey,
		"tags", len(b.Tags),
		"collections", len(b.Collections),
	)
	return b, nil
}

// Library returns the owner's bookmarks, newest first. An anonymous caller
// gets an empty library rather than an error.
func (s *BookmarkService) Library(ctx context.Context, ownerKey string) ([]model.Bookmark, error) {
	if ownerKey == "" {
		return []model.Bookmark{}, nil
	}

	bookmarks, err := s.repo.ListBookmarks(ctx, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("listing library: %w", err)
	}
	return bookmarks, nil
}

// Summarize generates a short summary for a URL the user is about to save.
func (s *BookmarkService) Summarize(ctx context.Context, in SummarizeInput) (string, error) {
	in.URL = strings.TrimSpace(in.URL)
	if err := s.validate.Validate(in); err != nil {
		return "", err
	}
	return s.enricher.Summarize(ctx, in.URL)
}
