package service

import (
	"context"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/google/uuid"
)

// HouseService records the operator's own per-round stakes.
type HouseService struct {
	champRepo *repository.ChampionshipRepository
	houseRepo *repository.HouseStakeRepository
	cache     Invalidator
}

// NewHouseService creates a new HouseService.
func NewHouseService(champRepo *repository.ChampionshipRepository, houseRepo *repository.HouseStakeRepository, cache Invalidator) *HouseService {
	return &HouseService{champRepo: champRepo, houseRepo: houseRepo, cache: cache}
}

// Create records a house stake on a round.
func (s *HouseService) Create(ctx context.Context, championshipID uuid.UUID, req domain.HouseStakeRequest) (*domain.HouseRoundStake, error) {
	roundName, err := requireName("round_name", req.RoundName)
	if err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, domain.NewValidationError("amount", "must not be negative")
	}
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}

	h := &domain.HouseRoundStake{
		ID:             uuid.New(),
		ChampionshipID: championshipID,
		RoundName:      roundName,
		Amount:         domain.Truncate2(req.Amount),
	}
	if err := s.houseRepo.Create(ctx, h); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, championshipID, "house.create")
	return h, nil
}

// List returns the house stakes of a championship.
func (s *HouseService) List(ctx context.Context, championshipID uuid.UUID) ([]domain.HouseRoundStake, error) {
	out, err := s.houseRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.HouseRoundStake{}
	}
	return out, nil
}

// Get fetches one house stake.
func (s *HouseService) Get(ctx context.Context, championshipID, id uuid.UUID) (*domain.HouseRoundStake, error) {
	return s.houseRepo.GetByID(ctx, championshipID, id)
}

// Delete removes one house stake.
func (s *HouseService) Delete(ctx context.Context, championshipID, id uuid.UUID) error {
	if err := s.houseRepo.Delete(ctx, championshipID, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, championshipID, "house.delete")
	return nil
}
