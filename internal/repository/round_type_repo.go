package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RoundTypeRepository handles the global round type catalogue.
type RoundTypeRepository struct {
	db *sqlx.DB
}

// NewRoundTypeRepository creates a new RoundTypeRepository.
func NewRoundTypeRepository(db *sqlx.DB) *RoundTypeRepository {
	return &RoundTypeRepository{db: db}
}

// Create inserts a round type. A taken name yields ErrRoundTypeExists.
func (r *RoundTypeRepository) Create(ctx context.Context, rt *domain.RoundType) error {
	err := r.db.GetContext(ctx, rt,
		`INSERT INTO round_types (id, name) VALUES ($1, $2) RETURNING *`, rt.ID, rt.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRoundTypeExists
		}
		return fmt.Errorf("round_type_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a round type by its primary key.
func (r *RoundTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RoundType, error) {
	var rt domain.RoundType
	err := r.db.GetContext(ctx, &rt, `SELECT * FROM round_types WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoundTypeNotFound
		}
		return nil, fmt.Errorf("round_type_repo.GetByID: %w", err)
	}
	return &rt, nil
}

// List returns all round types ordered by name.
func (r *RoundTypeRepository) List(ctx context.Context) ([]domain.RoundType, error) {
	var out []domain.RoundType
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM round_types ORDER BY name`); err != nil {
		return nil, fmt.Errorf("round_type_repo.List: %w", err)
	}
	return out, nil
}

// Update renames a round type.
func (r *RoundTypeRepository) Update(ctx context.Context, id uuid.UUID, name string) (*domain.RoundType, error) {
	var rt domain.RoundType
	err := r.db.GetContext(ctx, &rt,
		`UPDATE round_types SET name = $1 WHERE id = $2 RETURNING *`, name, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.ErrRoundTypeNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrRoundTypeExists
		}
		return nil, fmt.Errorf("round_type_repo.Update: %w", err)
	}
	return &rt, nil
}

// Delete removes an unreferenced round type.
func (r *RoundTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM round_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRoundTypeInUse
		}
		return fmt.Errorf("round_type_repo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRoundTypeNotFound
	}
	return nil
}
