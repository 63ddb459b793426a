package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/enrich"
	"github.com/sakif/savebox/internal/model"
	"github.com/sakif/savebox/internal/opengraph"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore keeps rows in memory and implements every repository
// interface the services take. Set failWith to make every call fail.

type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	bookmarks []model.Bookmark
	labels    []model.Label
	interests map[string]model.UserInterests
	failWith  error
	writes    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{interests: map[string]model.UserInterests{}}
}

func (f *fakeStore) CreateBookmark(_ context.Context, b *model.Bookmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	f.writes++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	f.bookmarks = append(f.bookmarks, *b)
	return nil
}

func (f *fakeStore) ListBookmarks(_ context.Context, ownerKey string) ([]model.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Bookmark{}
	for i := len(f.bookmarks) - 1; i >= 0; i-- {
		if f.bookmarks[i].OwnerKey == ownerKey {
			out = append(out, f.bookmarks[i])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateLabel(_ context.Context, l *model.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	f.writes++
	l.ID = f.nextID
	f.labels = append(f.labels, *l)
	return nil
}

func (f *fakeStore) ListLabels(_ context.Context, kind model.LabelKind, ownerKey string) ([]model.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Label{}
	for i := len(f.labels) - 1; i >= 0; i-- {
		if l := f.labels[i]; l.Kind == kind && l.OwnerKey == ownerKey {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertInterests(_ context.Context, in *model.UserInterests) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.writes++
	f.interests[in.OwnerKey] = *in
	return nil
}

func (f *fakeStore) GetInterests(_ context.Context, ownerKey string) (*model.UserInterests, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	in, ok := f.interests[ownerKey]
	if !ok {
		return nil, apperror.NotFound("interests", ownerKey)
	}
	return &in, nil
}

func (f *fakeStore) CountByOwner(ctx context.Context, ownerKey string) (model.Stats, error) {
	if f.failWith != nil {
		return model.Stats{}, f.failWith
	}
	bookmarks, _ := f.ListBookmarks(ctx, ownerKey)
	tags, _ := f.ListLabels(ctx, model.KindTag, ownerKey)
	collections, _ := f.ListLabels(ctx, model.KindCollection, ownerKey)
	return model.Stats{Bookmarks: len(bookmarks), Tags: len(tags), Collections: len(collections)}, nil
}

// =========================================================================
// FAKE ENRICHMENT
// =========================================================================

type fakeEnrichment struct {
	mu       sync.Mutex
	calls    []string
	embedErr error
	classify func() (bool, error)
	draftErr error
}

func (f *fakeEnrichment) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *fakeEnrichment) Summarize(_ context.Context, url string) (string, error) {
	f.record("summarize")
	return "summary of " + url, nil
}

func (f *fakeEnrichment) EmbedPair(_ context.Context, title, summary string) ([]float32, []float32, error) {
	f.record("embed")
	if f.embedErr != nil {
		return nil, nil, f.embedErr
	}
	return []float32{float32(len(title))}, []float32{float32(len(summary))}, nil
}

func (f *fakeEnrichment) AnalyzeImage(_ context.Context, image []byte, _ string) (enrich.ImageAnalysis, error) {
	f.record("image")
	return enrich.ImageAnalysis{Title: "Pic", Summary: "A picture."}, nil
}

func (f *fakeEnrichment) ExtractMetadata(_ context.Context, url string) (opengraph.Metadata, error) {
	f.record("metadata")
	return opengraph.Metadata{URL: url, Title: "Page"}, nil
}

func (f *fakeEnrichment) ClassifySocialMedia(_ context.Context, _ map[string]any) (bool, error) {
	f.record("classify")
	if f.classify == nil {
		return false, errors.New("no classifier configured")
	}
	return f.classify()
}

func (f *fakeEnrichment) DraftNote(_ context.Context, content string) (string, string, error) {
	f.record("draft")
	if f.draftErr != nil {
		return "", "", f.draftErr
	}
	return "Title", "Summary of " + content, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
