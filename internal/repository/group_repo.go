package repository

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// GroupRepository handles combined-bettor group membership rows.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ListByChampionship returns every membership row of a championship.
func (r *GroupRepository) ListByChampionship(ctx context.Context, championshipID uuid.UUID) ([]domain.GroupMember, error) {
	var out []domain.GroupMember
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM group_members WHERE championship_id = $1 ORDER BY group_identifier, bettor_name`,
		championshipID)
	if err != nil {
		return nil, fmt.Errorf("group_repo.ListByChampionship: %w", err)
	}
	return out, nil
}

// ListForUpdate reads the membership rows inside tx, locking them.
func (r *GroupRepository) ListForUpdate(ctx context.Context, tx *sqlx.Tx, championshipID uuid.UUID) ([]domain.GroupMember, error) {
	var out []domain.GroupMember
	err := tx.SelectContext(ctx, &out,
		`SELECT * FROM group_members WHERE championship_id = $1 FOR UPDATE`, championshipID)
	if err != nil {
		return nil, fmt.Errorf("group_repo.ListForUpdate: %w", err)
	}
	return out, nil
}

// ApplyPlan deletes the rows whose lowercased name is in the plan's Remove,
// then inserts its Insert rows, inside tx. It returns how many rows were
// deleted.
func (r *GroupRepository) ApplyPlan(ctx context.Context, tx *sqlx.Tx, championshipID uuid.UUID, plan *settlement.GroupPlan) (int64, error) {
	var deleted int64
	if len(plan.Remove) > 0 {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM group_members WHERE championship_id = $1 AND lower(bettor_name) = ANY($2)`,
			championshipID, pq.Array(plan.Remove))
		if err != nil {
			return 0, fmt.Errorf("group_repo.ApplyPlan delete: %w", err)
		}
		deleted, _ = res.RowsAffected()
	}

	for _, m := range plan.Insert {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (id, championship_id, group_identifier, bettor_name)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (championship_id, (lower(bettor_name)))
			DO UPDATE SET group_identifier = EXCLUDED.group_identifier,
			              bettor_name      = EXCLUDED.bettor_name`,
			uuid.New(), championshipID, m.GroupIdentifier, m.BettorName)
		if err != nil {
			return 0, fmt.Errorf("group_repo.ApplyPlan insert: %w", err)
		}
	}
	return deleted, nil
}
