package repository

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PossibleWinnerRepository handles the per-round-type contestant shortlist.
type PossibleWinnerRepository struct {
	db *sqlx.DB
}

// NewPossibleWinnerRepository creates a new PossibleWinnerRepository.
func NewPossibleWinnerRepository(db *sqlx.DB) *PossibleWinnerRepository {
	return &PossibleWinnerRepository{db: db}
}

// Replace swaps the shortlist of one round type for contestantIDs inside tx.
// The winner flag is cleared.
func (r *PossibleWinnerRepository) Replace(ctx context.Context, tx *sqlx.Tx, championshipID, roundTypeID uuid.UUID, contestantIDs []uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM possible_winners WHERE championship_id = $1 AND round_type_id = $2`,
		championshipID, roundTypeID)
	if err != nil {
		return fmt.Errorf("possible_winner_repo.Replace delete: %w", err)
	}
	for _, cid := range contestantIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO possible_winners (id, championship_id, round_type_id, contestant_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (championship_id, round_type_id, contestant_id) DO NOTHING`,
			uuid.New(), championshipID, roundTypeID, cid)
		if err != nil {
			return fmt.Errorf("possible_winner_repo.Replace insert: %w", err)
		}
	}
	return nil
}

// MarkWinner flags contestantID as the winner of the round type, clearing any
// previous flag, inside tx.
func (r *PossibleWinnerRepository) MarkWinner(ctx context.Context, tx *sqlx.Tx, championshipID, roundTypeID, contestantID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE possible_winners SET is_winner = FALSE
		WHERE championship_id = $1 AND round_type_id = $2 AND is_winner`,
		championshipID, roundTypeID)
	if err != nil {
		return fmt.Errorf("possible_winner_repo.MarkWinner clear: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE possible_winners SET is_winner = TRUE
		WHERE championship_id = $1 AND round_type_id = $2 AND contestant_id = $3`,
		championshipID, roundTypeID, contestantID)
	if err != nil {
		return fmt.Errorf("possible_winner_repo.MarkWinner set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPossibleWinnerNotFound
	}
	return nil
}

// List returns the shortlist of a championship.
func (r *PossibleWinnerRepository) List(ctx context.Context, championshipID uuid.UUID) ([]domain.PossibleWinner, error) {
	var out []domain.PossibleWinner
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM possible_winners WHERE championship_id = $1 ORDER BY round_type_id, created_at`,
		championshipID)
	if err != nil {
		return nil, fmt.Errorf("possible_winner_repo.List: %w", err)
	}
	return out, nil
}
