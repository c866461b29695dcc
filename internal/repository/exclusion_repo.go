package repository

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ExclusionRepository handles retroactively excluded pairs.
type ExclusionRepository struct {
	db *sqlx.DB
}

// NewExclusionRepository creates a new ExclusionRepository.
func NewExclusionRepository(db *sqlx.DB) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

// Create flags a pair number as excluded. Flagging it again refreshes the raw
// text and keeps the original row.
func (r *ExclusionRepository) Create(ctx context.Context, e *domain.ExcludedPair) error {
	e.PairNumber = domain.PadPairNumber(e.PairNumber)
	err := r.db.GetContext(ctx, e, `
		INSERT INTO excluded_pairs (id, championship_id, round_type_id, pair_number, raw_text)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (championship_id, round_type_id, pair_number)
		DO UPDATE SET raw_text = EXCLUDED.raw_text
		RETURNING *`,
		e.ID, e.ChampionshipID, e.RoundTypeID, e.PairNumber, e.RawText)
	if err != nil {
		return fmt.Errorf("exclusion_repo.Create: %w", err)
	}
	return nil
}

// ListByChampionship returns the excluded pairs of a championship.
func (r *ExclusionRepository) ListByChampionship(ctx context.Context, championshipID uuid.UUID) ([]domain.ExcludedPair, error) {
	var out []domain.ExcludedPair
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM excluded_pairs WHERE championship_id = $1 ORDER BY round_type_id, pair_number`,
		championshipID)
	if err != nil {
		return nil, fmt.Errorf("exclusion_repo.ListByChampionship: %w", err)
	}
	return out, nil
}

// Delete removes one exclusion of the championship.
func (r *ExclusionRepository) Delete(ctx context.Context, championshipID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM excluded_pairs WHERE id = $1 AND championship_id = $2`, id, championshipID)
	if err != nil {
		return fmt.Errorf("exclusion_repo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrExclusionNotFound
	}
	return nil
}
