package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sakif/savebox/internal/apperror"
)

const socialSystem = "You are a strict classifier. Answer with exactly one lowercase word: yes or no."

// ClassifySocialMedia asks whether metadata describes a social media post
// or profile. Only an answer of exactly "yes" (after trimming whitespace)
// counts; "Yes", "yes." and anything else is false.
//
// A failed provider call is an enrichment error, not a "no".
func (e *Enricher) ClassifySocialMedia(ctx context.Context, metadata map[string]any) (bool, error) {
	if len(metadata) == 0 {
		return false, apperror.ValidationFailed("metadata", "metadata is required")
	}

	payload, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return false, apperror.ValidationFailed("metadata", "metadata must be a JSON object")
	}

	prompt := "Does the following link metadata belong to a social media platform " +
		"(a post, profile, or video on a site like X, Instagram, TikTok, Facebook, " +
		"LinkedIn, Reddit, or YouTube)? Answer yes or no.\n\n" + string(payload)

	out, err := e.text.Generate(ctx, socialSystem, prompt)
	if err != nil {
		return false, apperror.EnrichmentFailed("classify social media", err)
	}

	return isYes(out), nil
}

func isYes(out string) bool {
	return strings.TrimSpace(out) == "yes"
}
