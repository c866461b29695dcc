package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WinnerRepository handles declared winners and round winner overrides.
type WinnerRepository struct {
	db *sqlx.DB
}

// NewWinnerRepository creates a new WinnerRepository.
func NewWinnerRepository(db *sqlx.DB) *WinnerRepository {
	return &WinnerRepository{db: db}
}

// ── Winners ─────────────────────────────────────────────────────────────────

// Replace swaps the championship's winner set for contestantIDs inside tx.
func (r *WinnerRepository) Replace(ctx context.Context, tx *sqlx.Tx, championshipID uuid.UUID, contestantIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM winners WHERE championship_id = $1`, championshipID); err != nil {
		return fmt.Errorf("winner_repo.Replace delete: %w", err)
	}
	for _, cid := range contestantIDs {
		if err := addWinner(ctx, tx, championshipID, cid); err != nil {
			return fmt.Errorf("winner_repo.Replace: %w", err)
		}
	}
	return nil
}

// Add declares one more winner. Declaring the same contestant twice is a no-op.
func (r *WinnerRepository) Add(ctx context.Context, championshipID, contestantID uuid.UUID) error {
	if err := addWinner(ctx, r.db, championshipID, contestantID); err != nil {
		return fmt.Errorf("winner_repo.Add: %w", err)
	}
	return nil
}

func addWinner(ctx context.Context, e sqlx.ExecerContext, championshipID, contestantID uuid.UUID) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO winners (id, championship_id, contestant_id) VALUES ($1, $2, $3)
		ON CONFLICT (championship_id, contestant_id) DO NOTHING`,
		uuid.New(), championshipID, contestantID)
	return err
}

// List returns the winners of a championship with contestant names.
func (r *WinnerRepository) List(ctx context.Context, championshipID uuid.UUID) ([]domain.Winner, error) {
	var out []domain.Winner
	err := r.db.SelectContext(ctx, &out, `
		SELECT w.id, w.championship_id, w.contestant_id, c.name AS contestant_name, w.created_at
		FROM winners w JOIN contestants c ON c.id = w.contestant_id
		WHERE w.championship_id = $1
		ORDER BY w.created_at`, championshipID)
	if err != nil {
		return nil, fmt.Errorf("winner_repo.List: %w", err)
	}
	return out, nil
}

// ── Round overrides ─────────────────────────────────────────────────────────

// UpsertOverride creates or updates the override of a round.
func (r *WinnerRepository) UpsertOverride(ctx context.Context, o *domain.RoundWinnerOverride) error {
	o.RoundName = strings.TrimSpace(o.RoundName)
	err := r.db.GetContext(ctx, o, `
		INSERT INTO round_winner_overrides (id, championship_id, round_name, contestant_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (championship_id, round_name)
		DO UPDATE SET contestant_id = EXCLUDED.contestant_id, updated_at = NOW()
		RETURNING *`,
		o.ID, o.ChampionshipID, o.RoundName, o.ContestantID)
	if err != nil {
		return fmt.Errorf("winner_repo.UpsertOverride: %w", err)
	}
	return nil
}

// ListOverrides returns the round overrides of a championship.
func (r *WinnerRepository) ListOverrides(ctx context.Context, championshipID uuid.UUID) ([]domain.RoundWinnerOverride, error) {
	var out []domain.RoundWinnerOverride
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM round_winner_overrides WHERE championship_id = $1 ORDER BY round_name`, championshipID)
	if err != nil {
		return nil, fmt.Errorf("winner_repo.ListOverrides: %w", err)
	}
	return out, nil
}

// DeleteOverride removes the override of a round.
func (r *WinnerRepository) DeleteOverride(ctx context.Context, championshipID uuid.UUID, roundName string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM round_winner_overrides WHERE championship_id = $1 AND round_name = $2`,
		championshipID, strings.TrimSpace(roundName))
	if err != nil {
		return fmt.Errorf("winner_repo.DeleteOverride: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOverrideNotFound
	}
	return nil
}
