package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WagerRepository handles wager rows.
type WagerRepository struct {
	db *sqlx.DB
}

// NewWagerRepository creates a new WagerRepository.
func NewWagerRepository(db *sqlx.DB) *WagerRepository {
	return &WagerRepository{db: db}
}

const insertWager = `
	INSERT INTO wagers
		(id, championship_id, round_type_id, round_name, pair_id, bettor_id,
		 stake_share, stake_total_original, bet_share_percent, prize_share_percent,
		 prize_after_withdrawal, prize_pool_original, withdrawal_percent)
	VALUES
		(:id, :championship_id, :round_type_id, :round_name, :pair_id, :bettor_id,
		 :stake_share, :stake_total_original, :bet_share_percent, :prize_share_percent,
		 :prize_after_withdrawal, :prize_pool_original, :withdrawal_percent)`

// ReplaceBatch deletes every wager of (championship, round type, round name)
// and inserts wagers in their place, inside tx. It returns how many rows the
// previous batch held.
func (r *WagerRepository) ReplaceBatch(ctx context.Context, tx *sqlx.Tx, championshipID, roundTypeID uuid.UUID, roundName string, wagers []domain.Wager) (int64, error) {
	roundName = strings.TrimSpace(roundName)
	res, err := tx.ExecContext(ctx,
		`DELETE FROM wagers WHERE championship_id = $1 AND round_type_id = $2 AND TRIM(round_name) = $3`,
		championshipID, roundTypeID, roundName)
	if err != nil {
		return 0, fmt.Errorf("wager_repo.ReplaceBatch delete: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if len(wagers) == 0 {
		return deleted, nil
	}
	if _, err := tx.NamedExecContext(ctx, insertWager, wagers); err != nil {
		return 0, fmt.Errorf("wager_repo.ReplaceBatch insert: %w", err)
	}
	return deleted, nil
}

// ListByRound returns the wagers of one round joined with pair number and
// bettor name.
func (r *WagerRepository) ListByRound(ctx context.Context, championshipID, roundTypeID uuid.UUID, roundName string) ([]domain.WagerView, error) {
	var out []domain.WagerView
	err := r.db.SelectContext(ctx, &out, `
		SELECT w.*, p.number AS pair_number, b.name AS bettor_name
		FROM wagers w
		JOIN pairs p   ON p.id = w.pair_id
		JOIN bettors b ON b.id = w.bettor_id
		WHERE w.championship_id = $1 AND w.round_type_id = $2 AND TRIM(w.round_name) = $3
		ORDER BY p.number, b.name`,
		championshipID, roundTypeID, strings.TrimSpace(roundName))
	if err != nil {
		return nil, fmt.Errorf("wager_repo.ListByRound: %w", err)
	}
	return out, nil
}
