package service

import (
	"context"
	"fmt"

	"github.com/sakif/savebox/internal/model"
	"github.com/sakif/savebox/internal/repository"
)

type StatsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

// Get counts the owner's bookmarks, tags and collections. A new user gets zeros.
func (s *StatsService) Get(ctx context.Context, ownerKey string) (model.Stats, error) {
	if err := requireOwner(ownerKey); err != nil {
		return model.Stats{}, err
	}

	stats, err := s.repo.CountByOwner(ctx, ownerKey)
	if err != nil {
		return model.Stats{}, fmt.Errorf("counting records: %w", err)
	}
	return stats, nil
}
