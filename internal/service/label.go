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

// LabelInput is the body of a tag or collection create request. Color is
// free text ("#fff", "teal", ...).
type LabelInput struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"max=64"`
}

// LabelService serves one label kind. The server builds one for tags and
// one for collections over the same repository.
type LabelService struct {
	kind     model.LabelKind
	repo     repository.LabelRepository
	validate *validation.Validator
	logger   *slog.Logger
}

func NewLabelService(kind model.LabelKind, repo repository.LabelRepository, v *validation.Validator, logger *slog.Logger) *LabelService {
	if !kind.Valid() {
		panic(fmt.Sprintf("service: unknown label kind %q", kind))
	}
	return &LabelService{kind: kind, repo: repo, validate: v, logger: logger}
}

// Kind reports which label resource this service serves.
func (s *LabelService) Kind() model.LabelKind { return s.kind }

// Create validates and stores a label. Duplicate names are allowed.
func (s *LabelService) Create(ctx context.Context, ownerKey string, in LabelInput) (*model.Label, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	l := &model.Label{
		Kind:     s.kind,
		OwnerKey: ownerKey,
		Name:     in.Name,
		Color:    in.Color,
	}
	if err := s.repo.CreateLabel(ctx, l); err != nil {
		return nil, fmt.Errorf("creating %s: %w", s.kind.Singular(), err)
	}

	s.logger.Info(s.kind.Singular()+" created", "id", l.ID, "owner", ownerKey)
	return l, nil
}

// List returns the owner's labels of this kind, newest first.
func (s *LabelService) List(ctx context.Context, ownerKey string) ([]model.Label, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, err
	}

	labels, err := s.repo.ListLabels(ctx, s.kind, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.kind, err)
	}
	return labels, nil
}
