// Package enrich turns raw user input into stored metadata by calling the
// AI and scraping providers.
//
// Each adapter is a single, independent call (or a pair of calls run
// concurrently). Nothing is cached, nothing is retried: a provider failure
// becomes an apperror.ErrEnrichment (or ErrMetadata for scraping) and the
// caller aborts the whole operation.
package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/opengraph"
)

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VisionModel describes an image, optionally constrained by a JSON schema.
type VisionModel interface {
	DescribeImage(ctx context.Context, prompt string, image []byte, mime string, schema json.RawMessage) (string, error)
}

// MetadataFetcher scrapes link-preview metadata for a URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (opengraph.Metadata, error)
}

// Enricher bundles the providers. Any of them may be nil if the matching
// adapters are never called.
type Enricher struct {
	text    TextGenerator
	embed   Embedder
	vision  VisionModel
	scraper MetadataFetcher
	logger  *slog.Logger
}

// New creates an Enricher.
func New(text TextGenerator, embed Embedder, vision VisionModel, scraper MetadataFetcher, logger *slog.Logger) *Enricher {
	return &Enricher{
		text:    text,
		embed:   embed,
		vision:  vision,
		scraper: scraper,
		logger:  logger,
	}
}

const summarizeSystem = "You write short, factual summaries of web pages for a personal bookmark library."

// Summarize asks the text provider for a 2-3 sentence summary of the page at url.
func (e *Enricher) Summarize(ctx context.Context, url string) (string, error) {
	prompt := "Summarize the content at this URL in 2-3 sentences. " +
		"Reply with the summary only.\n\nURL: " + url

	out, err := e.text.Generate(ctx, summarizeSystem, prompt)
	if err != nil {
		return "", apperror.EnrichmentFailed("summarize", err)
	}
	return strings.TrimSpace(out), nil
}

// EmbedPair embeds title and summary concurrently. Both must succeed; the
// first failure cancels the other call.
func (e *Enricher) EmbedPair(ctx context.Context, title, summary string) ([]float32, []float32, error) {
	var titleVec, summaryVec []float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.embed.Embed(gctx, title)
		if err != nil {
			return apperror.EnrichmentFailed("embed title", err)
		}
		titleVec = v
		return nil
	})
	g.Go(func() error {
		v, err := e.embed.Embed(gctx, summary)
		if err != nil {
			return apperror.EnrichmentFailed("embed summary", err)
		}
		summaryVec = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return titleVec, summaryVec, nil
}

// ExtractMetadata scrapes the Open Graph metadata of url.
func (e *Enricher) ExtractMetadata(ctx context.Context, url string) (opengraph.Metadata, error) {
	meta, err := e.scraper.Fetch(ctx, url)
	if err != nil {
		return opengraph.Metadata{}, apperror.MetadataFailed(url, err)
	}
	return meta, nil
}
