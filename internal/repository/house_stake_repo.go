package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// HouseStakeRepository handles the operator's per-round stakes.
type HouseStakeRepository struct {
	db *sqlx.DB
}

// NewHouseStakeRepository creates a new HouseStakeRepository.
func NewHouseStakeRepository(db *sqlx.DB) *HouseStakeRepository {
	return &HouseStakeRepository{db: db}
}

// Create inserts a house round stake.
func (r *HouseStakeRepository) Create(ctx context.Context, h *domain.HouseRoundStake) error {
	h.RoundName = strings.TrimSpace(h.RoundName)
	err := r.db.GetContext(ctx, h, `
		INSERT INTO house_round_stakes (id, championship_id, round_name, amount)
		VALUES ($1, $2, $3, $4) RETURNING *`,
		h.ID, h.ChampionshipID, h.RoundName, h.Amount)
	if err != nil {
		return fmt.Errorf("house_stake_repo.Create: %w", err)
	}
	return nil
}

// ListByChampionship returns the house stakes of a championship.
func (r *HouseStakeRepository) ListByChampionship(ctx context.Context, championshipID uuid.UUID) ([]domain.HouseRoundStake, error) {
	var out []domain.HouseRoundStake
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM house_round_stakes WHERE championship_id = $1 ORDER BY round_name, created_at`,
		championshipID)
	if err != nil {
		return nil, fmt.Errorf("house_stake_repo.ListByChampionship: %w", err)
	}
	return out, nil
}

// GetByID fetches one house stake of the championship.
func (r *HouseStakeRepository) GetByID(ctx context.Context, championshipID, id uuid.UUID) (*domain.HouseRoundStake, error) {
	var h domain.HouseRoundStake
	err := r.db.GetContext(ctx, &h,
		`SELECT * FROM house_round_stakes WHERE id = $1 AND championship_id = $2`, id, championshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHouseStakeNotFound
		}
		return nil, fmt.Errorf("house_stake_repo.GetByID: %w", err)
	}
	return &h, nil
}

// Delete removes one house stake of the championship.
func (r *HouseStakeRepository) Delete(ctx context.Context, championshipID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM house_round_stakes WHERE id = $1 AND championship_id = $2`, id, championshipID)
	if err != nil {
		return fmt.Errorf("house_stake_repo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrHouseStakeNotFound
	}
	return nil
}
