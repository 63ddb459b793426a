package enrich

import (
	"context"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/savebox/internal/apperror"
)

const noteSystem = "You help people file their own notes in a personal library."

// maxNoteChars bounds how much of a note is sent to the provider.
const maxNoteChars = 12000

// DraftNote generates a title and a summary for a free-form note. Rich-text
// (HTML) notes are converted to Markdown first. Both generations run
// concurrently and either failing fails the draft.
func (e *Enricher) DraftNote(ctx context.Context, content string) (title, summary string, err error) {
	text := NormalizeNote(content)
	if text == "" {
		return "", "", apperror.ValidationFailed("content", "content is required")
	}
	if len(text) > maxNoteChars {
		text = strings.ToValidUTF8(text[:maxNoteChars], "")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := e.text.Generate(gctx, noteSystem,
			"Write a title of at most 8 words for this note. Reply with the title only.\n\n"+text)
		if err != nil {
			return apperror.EnrichmentFailed("note title", err)
		}
		title = strings.Trim(strings.TrimSpace(out), `"`)
		return nil
	})
	g.Go(func() error {
		out, err := e.text.Generate(gctx, noteSystem,
			"Summarize this note in 2-3 sentences. Reply with the summary only.\n\n"+text)
		if err != nil {
			return apperror.EnrichmentFailed("note summary", err)
		}
		summary = strings.TrimSpace(out)
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return title, summary, nil
}

// NormalizeNote trims content and, when it looks like HTML, converts it to
// Markdown. Content that fails conversion is used as-is.
func NormalizeNote(content string) string {
	content = strings.TrimSpace(content)
	if !looksLikeHTML(content) {
		return content
	}

	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(md)
}

func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}
