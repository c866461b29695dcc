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

// ChampionshipRepository handles all database operations for Championships.
type ChampionshipRepository struct {
	db *sqlx.DB
}

// NewChampionshipRepository creates a new ChampionshipRepository.
func NewChampionshipRepository(db *sqlx.DB) *ChampionshipRepository {
	return &ChampionshipRepository{db: db}
}

// Create inserts a championship. A taken name yields ErrChampionshipExists.
func (r *ChampionshipRepository) Create(ctx context.Context, c *domain.Championship) error {
	err := r.db.GetContext(ctx, c,
		`INSERT INTO championships (id, name) VALUES ($1, $2) RETURNING *`,
		c.ID, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrChampionshipExists
		}
		return fmt.Errorf("championship_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a championship by its primary key.
func (r *ChampionshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Championship, error) {
	var c domain.Championship
	err := r.db.GetContext(ctx, &c, `SELECT * FROM championships WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("championship_repo.GetByID: %w", err)
	}
	return &c, nil
}

// GetByIDs fetches the championships with the given ids in one query. Missing
// ids are simply absent from the result.
func (r *ChampionshipRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Championship, error) {
	var out []domain.Championship
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM championships WHERE id = ANY($1::uuid[]) ORDER BY name`, uuidArray(ids))
	if err != nil {
		return nil, fmt.Errorf("championship_repo.GetByIDs: %w", err)
	}
	return out, nil
}

// List returns every championship ordered by name.
func (r *ChampionshipRepository) List(ctx context.Context) ([]domain.Championship, error) {
	var out []domain.Championship
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM championships ORDER BY name`); err != nil {
		return nil, fmt.Errorf("championship_repo.List: %w", err)
	}
	return out, nil
}

// ExistsByName reports whether a championship with the name exists,
// comparing case-insensitively.
func (r *ChampionshipRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM championships WHERE LOWER(name) = LOWER($1))`, name)
	if err != nil {
		return false, fmt.Errorf("championship_repo.ExistsByName: %w", err)
	}
	return exists, nil
}

// cascadeSteps lists the child tables in deletion order with the summary
// field each count lands in.
var cascadeSteps = []struct {
	query string
	field func(s *domain.DeletionSummary) *int64
}{
	{`DELETE FROM wagers WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.Wagers }},
	{`DELETE FROM excluded_pairs WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.ExcludedPairs }},
	{`DELETE FROM winners WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.Winners }},
	{`DELETE FROM round_winner_overrides WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.RoundOverrides }},
	{`DELETE FROM group_members WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.GroupMembers }},
	{`DELETE FROM house_round_stakes WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.HouseStakes }},
	{`DELETE FROM possible_winners WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.PossibleWinners }},
	{`DELETE FROM contestants c USING pairs p WHERE c.pair_id = p.id AND p.championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.Contestants }},
	{`DELETE FROM pairs WHERE championship_id = $1`, func(s *domain.DeletionSummary) *int64 { return &s.Pairs }},
}

// DeleteCascade removes the championship and every dependent row inside tx,
// returning how many rows each table lost.
func (r *ChampionshipRepository) DeleteCascade(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.DeletionSummary, error) {
	var name string
	err := tx.GetContext(ctx, &name, `SELECT name FROM championships WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("championship_repo.DeleteCascade lock: %w", err)
	}

	summary := &domain.DeletionSummary{Championship: name}
	for _, step := range cascadeSteps {
		res, err := tx.ExecContext(ctx, step.query, id)
		if err != nil {
			return nil, fmt.Errorf("championship_repo.DeleteCascade: %w", err)
		}
		n, _ := res.RowsAffected()
		*step.field(summary) = n
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM championships WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("championship_repo.DeleteCascade: %w", err)
	}
	return summary, nil
}
