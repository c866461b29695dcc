package service

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// GroupService defines and dissolves combined-bettor groups.
type GroupService struct {
	db        *sqlx.DB
	champRepo *repository.ChampionshipRepository
	groupRepo *repository.GroupRepository
	cache     Invalidator
}

// NewGroupService creates a new GroupService.
func NewGroupService(db *sqlx.DB, champRepo *repository.ChampionshipRepository, groupRepo *repository.GroupRepository, cache Invalidator) *GroupService {
	return &GroupService{db: db, champRepo: champRepo, groupRepo: groupRepo, cache: cache}
}

// Define creates or redefines groups. A redefined group keeps exactly the
// listed names; members left out settle individually again.
func (s *GroupService) Define(ctx context.Context, championshipID uuid.UUID, specs []settlement.GroupSpec) ([]domain.Group, error) {
	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}

	var plan *settlement.GroupPlan
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		existing, err := s.groupRepo.ListForUpdate(ctx, tx, championshipID)
		if err != nil {
			return err
		}
		plan, err = settlement.PlanDefinition(existing, specs, uuid.NewString)
		if err != nil {
			return err
		}
		_, err = s.groupRepo.ApplyPlan(ctx, tx, championshipID, plan)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("group_service.Define: %w", err)
	}

	invalidate(ctx, s.cache, championshipID, "groups.define")
	log.WithFields(log.Fields{
		"championship_id": championshipID,
		"groups":          len(plan.Groups),
		"removed":         len(plan.Remove),
	}).Info("bettor groups defined")
	return plan.Groups, nil
}

// Dissolve removes a whole group, some names wherever they are grouped, or
// some names of one group. It returns the names that now settle individually.
func (s *GroupService) Dissolve(ctx context.Context, championshipID uuid.UUID, sel settlement.DissolveSelector) ([]string, error) {
	var plan *settlement.GroupPlan
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		existing, err := s.groupRepo.ListForUpdate(ctx, tx, championshipID)
		if err != nil {
			return err
		}
		plan, err = settlement.PlanDissolve(existing, sel)
		if err != nil {
			return err
		}
		_, err = s.groupRepo.ApplyPlan(ctx, tx, championshipID, plan)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("group_service.Dissolve: %w", err)
	}
	invalidate(ctx, s.cache, championshipID, "groups.dissolve")
	return plan.Released, nil
}
