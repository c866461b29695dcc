package repository

import (
	"context"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SnapshotRepository bulk-loads everything settlement needs for a set of
// championships: one query per entity type, filtered with = ANY($1).
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// LoadSnapshots returns one snapshot per id, in the order of ids. An id with
// no championship row fails with ErrChampionshipNotFound.
func (r *SnapshotRepository) LoadSnapshots(ctx context.Context, ids []uuid.UUID) ([]*settlement.Snapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	arr := uuidArray(ids)

	var champs []domain.Championship
	if err := r.db.SelectContext(ctx, &champs,
		`SELECT * FROM championships WHERE id = ANY($1::uuid[])`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots championships: %w", err)
	}
	byID := make(map[uuid.UUID]*settlement.Snapshot, len(champs))
	for _, c := range champs {
		byID[c.ID] = &settlement.Snapshot{Championship: c}
	}
	out := make([]*settlement.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("snapshot_repo.LoadSnapshots %s: %w", id, domain.ErrChampionshipNotFound)
		}
		out = append(out, s)
	}

	var roundTypes []domain.RoundType
	if err := r.db.SelectContext(ctx, &roundTypes, `SELECT * FROM round_types`); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots round types: %w", err)
	}
	for _, s := range byID {
		s.RoundTypes = roundTypes
	}

	var pairs []domain.Pair
	if err := r.db.SelectContext(ctx, &pairs, `
		SELECT id, championship_id, round_type_id, number, created_at
		FROM pairs WHERE championship_id = ANY($1::uuid[])`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots pairs: %w", err)
	}
	var contestants []domain.Contestant
	if err := r.db.SelectContext(ctx, &contestants, `
		SELECT c.id, c.pair_id, c.name, c.label, c.position
		FROM contestants c JOIN pairs p ON p.id = c.pair_id
		WHERE p.championship_id = ANY($1::uuid[])
		ORDER BY c.pair_id, c.position`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots contestants: %w", err)
	}
	attachContestants(pairs, contestants)
	for _, p := range pairs {
		byID[p.ChampionshipID].Pairs = append(byID[p.ChampionshipID].Pairs, p)
	}

	var wagers []domain.Wager
	if err := r.db.SelectContext(ctx, &wagers,
		`SELECT * FROM wagers WHERE championship_id = ANY($1::uuid[]) ORDER BY created_at, id`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots wagers: %w", err)
	}
	for _, w := range wagers {
		byID[w.ChampionshipID].Wagers = append(byID[w.ChampionshipID].Wagers, w)
	}

	var bettors []domain.Bettor
	if err := r.db.SelectContext(ctx, &bettors, `
		SELECT * FROM bettors WHERE id IN (
			SELECT DISTINCT bettor_id FROM wagers WHERE championship_id = ANY($1::uuid[]))`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots bettors: %w", err)
	}
	for _, s := range byID {
		s.Bettors = bettors
	}

	var exclusions []domain.ExcludedPair
	if err := r.db.SelectContext(ctx, &exclusions,
		`SELECT * FROM excluded_pairs WHERE championship_id = ANY($1::uuid[])`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots exclusions: %w", err)
	}
	for _, e := range exclusions {
		byID[e.ChampionshipID].Exclusions = append(byID[e.ChampionshipID].Exclusions, e)
	}

	var winners []domain.Winner
	if err := r.db.SelectContext(ctx, &winners, `
		SELECT w.id, w.championship_id, w.contestant_id, c.name AS contestant_name, w.created_at
		FROM winners w JOIN contestants c ON c.id = w.contestant_id
		WHERE w.championship_id = ANY($1::uuid[])
		ORDER BY w.created_at`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots winners: %w", err)
	}
	for _, w := range winners {
		byID[w.ChampionshipID].Winners = append(byID[w.ChampionshipID].Winners, w)
	}

	var overrides []domain.RoundWinnerOverride
	if err := r.db.SelectContext(ctx, &overrides,
		`SELECT * FROM round_winner_overrides WHERE championship_id = ANY($1::uuid[])`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots overrides: %w", err)
	}
	for _, o := range overrides {
		byID[o.ChampionshipID].Overrides = append(byID[o.ChampionshipID].Overrides, o)
	}

	var groups []domain.GroupMember
	if err := r.db.SelectContext(ctx, &groups,
		`SELECT * FROM group_members WHERE championship_id = ANY($1::uuid[])`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots groups: %w", err)
	}
	for _, g := range groups {
		byID[g.ChampionshipID].Groups = append(byID[g.ChampionshipID].Groups, g)
	}

	var house []domain.HouseRoundStake
	if err := r.db.SelectContext(ctx, &house,
		`SELECT * FROM house_round_stakes WHERE championship_id = ANY($1::uuid[])`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots house stakes: %w", err)
	}
	for _, h := range house {
		byID[h.ChampionshipID].HouseStakes = append(byID[h.ChampionshipID].HouseStakes, h)
	}

	var possible []domain.PossibleWinner
	if err := r.db.SelectContext(ctx, &possible,
		`SELECT * FROM possible_winners WHERE championship_id = ANY($1::uuid[]) ORDER BY created_at`, arr); err != nil {
		return nil, fmt.Errorf("snapshot_repo.LoadSnapshots possible winners: %w", err)
	}
	for _, pw := range possible {
		byID[pw.ChampionshipID].PossibleWinners = append(byID[pw.ChampionshipID].PossibleWinners, pw)
	}

	return out, nil
}
