package service

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WinnerService declares championship winners, round overrides and the
// possible-winner shortlist.
type WinnerService struct {
	db         *sqlx.DB
	champRepo  *repository.ChampionshipRepository
	rtRepo     *repository.RoundTypeRepository
	pairRepo   *repository.PairRepository
	winnerRepo *repository.WinnerRepository
	pwRepo     *repository.PossibleWinnerRepository
	cache      Invalidator
}

// NewWinnerService creates a new WinnerService.
func NewWinnerService(
	db *sqlx.DB,
	champRepo *repository.ChampionshipRepository,
	rtRepo *repository.RoundTypeRepository,
	pairRepo *repository.PairRepository,
	winnerRepo *repository.WinnerRepository,
	pwRepo *repository.PossibleWinnerRepository,
	cache Invalidator,
) *WinnerService {
	return &WinnerService{
		db:         db,
		champRepo:  champRepo,
		rtRepo:     rtRepo,
		pairRepo:   pairRepo,
		winnerRepo: winnerRepo,
		pwRepo:     pwRepo,
		cache:      cache,
	}
}

// contestantOf returns the contestant when it belongs to the championship.
func (s *WinnerService) contestantOf(ctx context.Context, championshipID, contestantID uuid.UUID) (*domain.ContestantInfo, error) {
	ci, err := s.pairRepo.GetContestant(ctx, contestantID)
	if err != nil {
		return nil, err
	}
	if ci.ChampionshipID != championshipID {
		return nil, domain.ErrContestantNotFound
	}
	return ci, nil
}

// ── Winners ─────────────────────────────────────────────────────────────────

// ReplaceWinners swaps the championship's declared winners. An empty list
// clears them.
func (s *WinnerService) ReplaceWinners(ctx context.Context, championshipID uuid.UUID, contestantIDs []uuid.UUID) ([]domain.Winner, error) {
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}
	ids := dedupeIDs(contestantIDs)
	for _, id := range ids {
		if _, err := s.contestantOf(ctx, championshipID, id); err != nil {
			return nil, err
		}
	}

	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.winnerRepo.Replace(ctx, tx, championshipID, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("winner_service.ReplaceWinners: %w", err)
	}
	invalidate(ctx, s.cache, championshipID, "winners.replace")
	return s.ListWinners(ctx, championshipID)
}

// AddWinner declares one more winner.
func (s *WinnerService) AddWinner(ctx context.Context, championshipID, contestantID uuid.UUID) ([]domain.Winner, error) {
	if _, err := s.contestantOf(ctx, championshipID, contestantID); err != nil {
		return nil, err
	}
	if err := s.winnerRepo.Add(ctx, championshipID, contestantID); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, championshipID, "winners.add")
	return s.ListWinners(ctx, championshipID)
}

// ListWinners returns the declared winners with contestant names.
func (s *WinnerService) ListWinners(ctx context.Context, championshipID uuid.UUID) ([]domain.Winner, error) {
	out, err := s.winnerRepo.List(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Winner{}
	}
	return out, nil
}

// ── Round overrides ─────────────────────────────────────────────────────────

// UpsertOverride takes a round out of general winner accounting.
func (s *WinnerService) UpsertOverride(ctx context.Context, championshipID uuid.UUID, req domain.OverrideRequest) (*domain.RoundWinnerOverride, error) {
	roundName, err := requireName("round_name", req.RoundName)
	if err != nil {
		return nil, err
	}
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}
	if req.ContestantID != nil {
		if _, err := s.contestantOf(ctx, championshipID, *req.ContestantID); err != nil {
			return nil, err
		}
	}

	o := &domain.RoundWinnerOverride{
		ID:             uuid.New(),
		ChampionshipID: championshipID,
		RoundName:      roundName,
		ContestantID:   req.ContestantID,
	}
	if err := s.winnerRepo.UpsertOverride(ctx, o); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, championshipID, "override.upsert")
	return o, nil
}

// ListOverrides returns the round overrides of a championship.
func (s *WinnerService) ListOverrides(ctx context.Context, championshipID uuid.UUID) ([]domain.RoundWinnerOverride, error) {
	out, err := s.winnerRepo.ListOverrides(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.RoundWinnerOverride{}
	}
	return out, nil
}

// DeleteOverride puts a round back into general winner accounting.
func (s *WinnerService) DeleteOverride(ctx context.Context, championshipID uuid.UUID, roundName string) error {
	if err := s.winnerRepo.DeleteOverride(ctx, championshipID, roundName); err != nil {
		return err
	}
	invalidate(ctx, s.cache, championshipID, "override.delete")
	return nil
}

// ── Possible winners ────────────────────────────────────────────────────────

// DefinePossibleWinners replaces the shortlist of one round type. Every
// contestant must sit in a pair of that round type.
func (s *WinnerService) DefinePossibleWinners(ctx context.Context, championshipID uuid.UUID, req domain.PossibleWinnersRequest) ([]domain.PossibleWinner, error) {
	ids := dedupeIDs(req.ContestantIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("contestant_ids", "at least one contestant is required")
	}
	if _, err := s.rtRepo.GetByID(ctx, req.RoundTypeID); err != nil {
		return nil, err
	}
	for _, id := range ids {
		ci, err := s.contestantOf(ctx, championshipID, id)
		if err != nil {
			return nil, err
		}
		if ci.RoundTypeID != req.RoundTypeID {
			return nil, domain.NewValidationError("contestant_ids", "contestant %s is not in a pair of this round type", id)
		}
	}

	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.pwRepo.Replace(ctx, tx, championshipID, req.RoundTypeID, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("winner_service.DefinePossibleWinners: %w", err)
	}
	invalidate(ctx, s.cache, championshipID, "possible_winners.define")
	return s.ListPossibleWinners(ctx, championshipID)
}

// MarkPossibleWinner flags the round type winner among the shortlist. At most
// one contestant per round type carries the flag.
func (s *WinnerService) MarkPossibleWinner(ctx context.Context, championshipID uuid.UUID, req domain.MarkWinnerRequest) ([]domain.PossibleWinner, error) {
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.pwRepo.MarkWinner(ctx, tx, championshipID, req.RoundTypeID, req.ContestantID)
	})
	if err != nil {
		return nil, fmt.Errorf("winner_service.MarkPossibleWinner: %w", err)
	}
	invalidate(ctx, s.cache, championshipID, "possible_winners.mark")
	return s.ListPossibleWinners(ctx, championshipID)
}

// ListPossibleWinners returns the raw shortlist rows.
func (s *WinnerService) ListPossibleWinners(ctx context.Context, championshipID uuid.UUID) ([]domain.PossibleWinner, error) {
	out, err := s.pwRepo.List(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.PossibleWinner{}
	}
	return out, nil
}
