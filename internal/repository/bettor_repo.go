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

// BettorRepository handles the global bettor registry.
type BettorRepository struct {
	db *sqlx.DB
}

// NewBettorRepository creates a new BettorRepository.
func NewBettorRepository(db *sqlx.DB) *BettorRepository {
	return &BettorRepository{db: db}
}

// FindOrCreate returns the bettor whose name matches case-insensitively,
// creating it with the trimmed name when absent.
func (r *BettorRepository) FindOrCreate(ctx context.Context, tx *sqlx.Tx, name string) (*domain.Bettor, error) {
	name = strings.TrimSpace(name)
	var b domain.Bettor
	err := tx.GetContext(ctx, &b, `SELECT * FROM bettors WHERE LOWER(name) = LOWER($1)`, name)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bettor_repo.FindOrCreate lookup: %w", err)
	}

	err = tx.GetContext(ctx, &b, `
		INSERT INTO bettors (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING *`, uuid.New(), name)
	if err != nil {
		return nil, fmt.Errorf("bettor_repo.FindOrCreate insert: %w", err)
	}
	return &b, nil
}

// List returns every bettor ordered by name.
func (r *BettorRepository) List(ctx context.Context) ([]domain.Bettor, error) {
	var out []domain.Bettor
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM bettors ORDER BY LOWER(name)`); err != nil {
		return nil, fmt.Errorf("bettor_repo.List: %w", err)
	}
	return out, nil
}
