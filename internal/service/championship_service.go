package service

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// ChampionshipService manages championships, round types and pair rosters.
type ChampionshipService struct {
	db        *sqlx.DB
	champRepo *repository.ChampionshipRepository
	rtRepo    *repository.RoundTypeRepository
	pairRepo  *repository.PairRepository
	cache     Invalidator
}

// NewChampionshipService creates a new ChampionshipService.
func NewChampionshipService(
	db *sqlx.DB,
	champRepo *repository.ChampionshipRepository,
	rtRepo *repository.RoundTypeRepository,
	pairRepo *repository.PairRepository,
	cache Invalidator,
) *ChampionshipService {
	return &ChampionshipService{db: db, champRepo: champRepo, rtRepo: rtRepo, pairRepo: pairRepo, cache: cache}
}

// ──────────────────────────────────────────────────────────────────────────────
// Championships
// ──────────────────────────────────────────────────────────────────────────────

// Create registers a championship under a unique name.
func (s *ChampionshipService) Create(ctx context.Context, name string) (*domain.Championship, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	exists, err := s.champRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrChampionshipExists
	}
	c := &domain.Championship{ID: uuid.New(), Name: name}
	if err := s.champRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get fetches one championship.
func (s *ChampionshipService) Get(ctx context.Context, id uuid.UUID) (*domain.Championship, error) {
	return s.champRepo.GetByID(ctx, id)
}

// List returns every championship.
func (s *ChampionshipService) List(ctx context.Context) ([]domain.Championship, error) {
	out, err := s.champRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Championship{}
	}
	return out, nil
}

// Delete removes a championship and everything it owns, reporting how many
// rows each table lost.
func (s *ChampionshipService) Delete(ctx context.Context, id uuid.UUID) (*domain.DeletionSummary, error) {
	var summary *domain.DeletionSummary
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		summary, err = s.champRepo.DeleteCascade(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("championship_service.Delete: %w", err)
	}

	invalidate(ctx, s.cache, id, "championship.delete")
	log.WithFields(log.Fields{
		"championship_id": id,
		"name":            summary.Championship,
		"wagers":          summary.Wagers,
		"pairs":           summary.Pairs,
	}).Info("championship deleted")
	return summary, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Round types
// ──────────────────────────────────────────────────────────────────────────────

// CreateRoundType registers a round type under a unique name.
func (s *ChampionshipService) CreateRoundType(ctx context.Context, name string) (*domain.RoundType, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	rt := &domain.RoundType{ID: uuid.New(), Name: name}
	if err := s.rtRepo.Create(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// ListRoundTypes returns every round type.
func (s *ChampionshipService) ListRoundTypes(ctx context.Context) ([]domain.RoundType, error) {
	out, err := s.rtRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.RoundType{}
	}
	return out, nil
}

// RenameRoundType changes a round type name.
func (s *ChampionshipService) RenameRoundType(ctx context.Context, id uuid.UUID, name string) (*domain.RoundType, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	return s.rtRepo.Update(ctx, id, name)
}

// DeleteRoundType removes a round type no pair or wager references.
func (s *ChampionshipService) DeleteRoundType(ctx context.Context, id uuid.UUID) error {
	return s.rtRepo.Delete(ctx, id)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pairs
// ──────────────────────────────────────────────────────────────────────────────

// CreatePair registers a numbered pair with its contestants in order.
func (s *ChampionshipService) CreatePair(ctx context.Context, championshipID uuid.UUID, req domain.CreatePairRequest) (*domain.Pair, error) {
	number, err := requireName("number", req.Number)
	if err != nil {
		return nil, err
	}
	if len(req.Contestants) == 0 {
		return nil, domain.NewValidationError("contestants", "at least one contestant is required")
	}

	p := &domain.Pair{
		ID:             uuid.New(),
		ChampionshipID: championshipID,
		RoundTypeID:    req.RoundTypeID,
		Number:         number,
	}
	for i, in := range req.Contestants {
		name, err := requireName(fmt.Sprintf("contestants[%d].name", i), in.Name)
		if err != nil {
			return nil, err
		}
		p.Contestants = append(p.Contestants, domain.Contestant{Name: name, Label: in.Label})
	}

	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}
	if _, err := s.rtRepo.GetByID(ctx, req.RoundTypeID); err != nil {
		return nil, err
	}

	err = repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.pairRepo.CreateWithContestants(ctx, tx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("championship_service.CreatePair: %w", err)
	}
	invalidate(ctx, s.cache, championshipID, "pair.create")
	return p, nil
}

// ListPairs returns the pairs of a championship with contestants.
func (s *ChampionshipService) ListPairs(ctx context.Context, championshipID uuid.UUID) ([]domain.Pair, error) {
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}
	out, err := s.pairRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Pair{}
	}
	return out, nil
}
