package enrich

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sakif/savebox/internal/apperror"
)

// Fallbacks used when the vision model's answer cannot be parsed at all.
const (
	DefaultImageTitle   = "Analyzed Image"
	DefaultImageSummary = "Image analysis completed"
)

// ImageAnalysis is what a saved image is stored with.
type ImageAnalysis struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

var imageSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "title":   {"type": "string", "description": "A short title for the image, at most 8 words"},
    "summary": {"type": "string", "description": "A 1-2 sentence description of the image"}
  },
  "required": ["title", "summary"],
  "additionalProperties": false
}`)

const imagePrompt = "Look at this image and give it a short title and a 1-2 sentence summary " +
	"suitable for a bookmark library. If you cannot answer in JSON, answer in the form:\n" +
	"Title: <title>\nSummary: <summary>"

var (
	titleLine   = regexp.MustCompile(`(?im)^\s*\**title\**\s*:\**\s*(.+?)\s*$`)
	summaryLine = regexp.MustCompile(`(?im)^\s*\**summary\**\s*:\**\s*(.+?)\s*$`)
)

// AnalyzeImage asks the vision model for a title and summary.
//
// The model is asked for schema-constrained JSON. Providers that ignore
// response_format may still answer in "Title: / Summary:" lines, so those
// are parsed next; if neither shape is found the fixed defaults are used.
// An empty image is rejected before any provider call.
func (e *Enricher) AnalyzeImage(ctx context.Context, image []byte, mime string) (ImageAnalysis, error) {
	if len(image) == 0 {
		return ImageAnalysis{}, apperror.ValidationFailed("image", "image is required")
	}

	out, err := e.vision.DescribeImage(ctx, imagePrompt, image, mime, imageSchema)
	if err != nil {
		return ImageAnalysis{}, apperror.EnrichmentFailed("analyze image", err)
	}

	return parseImageAnalysis(out), nil
}

func parseImageAnalysis(out string) ImageAnalysis {
	out = strings.TrimSpace(out)

	var structured ImageAnalysis
	if err := json.Unmarshal([]byte(out), &structured); err == nil &&
		strings.TrimSpace(structured.Title) != "" && strings.TrimSpace(structured.Summary) != "" {
		return ImageAnalysis{
			Title:   strings.TrimSpace(structured.Title),
			Summary: strings.TrimSpace(structured.Summary),
		}
	}

	t := titleLine.FindStringSubmatch(out)
	s := summaryLine.FindStringSubmatch(out)
	if t == nil || s == nil {
		return ImageAnalysis{Title: DefaultImageTitle, Summary: DefaultImageSummary}
	}
	return ImageAnalysis{Title: t[1], Summary: s[1]}
}
