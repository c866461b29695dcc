package service

import (
	"context"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ExclusionService flags pair numbers as excluded after the fact.
type ExclusionService struct {
	champRepo     *repository.ChampionshipRepository
	rtRepo        *repository.RoundTypeRepository
	exclusionRepo *repository.ExclusionRepository
	cache         Invalidator
}

// NewExclusionService creates a new ExclusionService.
func NewExclusionService(
	champRepo *repository.ChampionshipRepository,
	rtRepo *repository.RoundTypeRepository,
	exclusionRepo *repository.ExclusionRepository,
	cache Invalidator,
) *ExclusionService {
	return &ExclusionService{champRepo: champRepo, rtRepo: rtRepo, exclusionRepo: exclusionRepo, cache: cache}
}

// Add excludes a pair number of a round type. The pair does not need to be
// registered: an exclusion without wagers changes no prize base.
func (s *ExclusionService) Add(ctx context.Context, championshipID uuid.UUID, req domain.ExclusionRequest) (*domain.ExcludedPair, error) {
	number, err := requireName("pair_number", req.PairNumber)
	if err != nil {
		return nil, err
	}
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}
	if _, err := s.rtRepo.GetByID(ctx, req.RoundTypeID); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(req.RawText)
	if raw == "" {
		raw = number
	}
	e := &domain.ExcludedPair{
		ID:             uuid.New(),
		ChampionshipID: championshipID,
		RoundTypeID:    req.RoundTypeID,
		PairNumber:     number,
		RawText:        raw,
	}
	if err := s.exclusionRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, championshipID, "exclusion.add")
	log.WithFields(log.Fields{
		"championship_id": championshipID,
		"round_type_id":   e.RoundTypeID,
		"pair_number":     e.PairNumber,
	}).Info("pair excluded")
	return e, nil
}

// List returns the exclusions of a championship.
func (s *ExclusionService) List(ctx context.Context, championshipID uuid.UUID) ([]domain.ExcludedPair, error) {
	out, err := s.exclusionRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ExcludedPair{}
	}
	return out, nil
}

// Delete lifts one exclusion.
func (s *ExclusionService) Delete(ctx context.Context, championshipID, id uuid.UUID) error {
	if err := s.exclusionRepo.Delete(ctx, championshipID, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, championshipID, "exclusion.delete")
	return nil
}
