package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/model"
	"github.com/sakif/savebox/internal/repository"
	"github.com/sakif/savebox/internal/validation"
)

// InterestsInput replaces the owner's interests. The list must be present;
// an empty list clears it.
type InterestsInput struct {
	Interests []string `json:"interests" validate:"required,max=200,dive,max=100"`
}

type InterestService struct {
	repo     repository.InterestRepository
	validate *validation.Validator
	logger   *slog.Logger
}

func NewInterestService(repo repository.InterestRepository, v *validation.Validator, logger *slog.Logger) *InterestService {
	return &InterestService{repo: repo, validate: v, logger: logger}
}

// Get returns the owner's interests and whether any were ever saved.
// An owner with no row gets an empty, non-nil list and false.
func (s *InterestService) Get(ctx context.Context, ownerKey string) ([]string, bool, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, false, err
	}

	in, err := s.repo.GetInterests(ctx, ownerKey)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return []string{}, false, nil
		}
		return nil, false, fmt.Errorf("getting interests: %w", err)
	}
	return in.Interests, true, nil
}

// Save replaces the owner's interests in full (never a union with the
// previous list). Items are trimmed and blank ones dropped.
func (s *InterestService) Save(ctx context.Context, ownerKey string, in InterestsInput) (*model.UserInterests, error) {
	if err := requireOwner(ownerKey); err != nil {
		return nil, err
	}
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	row := &model.UserInterests{OwnerKey: ownerKey, Interests: cleanList(in.Interests)}
	if err := s.repo.UpsertInterests(ctx, row); err != nil {
		return nil, fmt.Errorf("saving interests: %w", err)
	}

	s.logger.Info("interests saved", "owner", ownerKey, "count", len(row.Interests))
	return row, nil
}
