// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes envelopes
//	Service (Business layer) → validates, calls enrichment, enforces owner scope
//	Repository (Data layer)  → reads/writes rows for one owner key
//
// Every service method takes the owner key as an explicit string argument.
// The handler resolves it from the session; the service never looks at
// HTTP state. An empty owner key on a write is treated as an anonymous
// caller and rejected with apperror.Unauthenticated.
//
// ORDER OF WORK IN A WRITE:
//
//  1. trim and validate the input (no provider call, no write on failure)
//  2. call the enrichment adapters, if the resource needs any
//  3. persist
//
// A failure at any step aborts the request; nothing is partially saved.
package service

import (
	"context"
	"strings"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/enrich"
	"github.com/sakif/savebox/internal/opengraph"
)

// Enrichment is the subset of *enrich.Enricher the services call.
// Tests substitute a fake.
type Enrichment interface {
	Summarize(ctx context.Context, url string) (string, error)
	EmbedPair(ctx context.Context, title, summary string) ([]float32, []float32, error)
	AnalyzeImage(ctx context.Context, image []byte, mime string) (enrich.ImageAnalysis, error)
	ExtractMetadata(ctx context.Context, url string) (opengraph.Metadata, error)
	ClassifySocialMedia(ctx context.Context, metadata map[string]any) (bool, error)
	DraftNote(ctx context.Context, content string) (string, string, error)
}

var _ Enrichment = (*enrich.Enricher)(nil)

func requireOwner(ownerKey string) error {
	if strings.TrimSpace(ownerKey) == "" {
		return apperror.Unauthenticated()
	}
	return nil
}

// cleanList trims every item and drops the blank ones. The result is
// never nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
