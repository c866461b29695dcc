package service

import (
	"context"
	"fmt"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/metrics"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SnapshotLoader bulk-loads settlement snapshots in the order of ids.
type SnapshotLoader interface {
	LoadSnapshots(ctx context.Context, ids []uuid.UUID) ([]*settlement.Snapshot, error)
}

// BalanceCache stores computed championship balances. Invalidate advances
// the championship's generation; SetBalance must drop a balance computed
// under an older generation than the current one.
type BalanceCache interface {
	Generation(ctx context.Context, championshipID uuid.UUID) (int64, error)
	GetBalance(ctx context.Context, championshipID uuid.UUID, policy settlement.RoundingPolicy) (*settlement.ChampionshipBalance, bool, error)
	SetBalance(ctx context.Context, policy settlement.RoundingPolicy, gen int64, b *settlement.ChampionshipBalance) error
	Invalidate(ctx context.Context, championshipID uuid.UUID) error
}

// SettlementService serves every read-side report: balances for one or many
// championships, winner payouts, possible winners, exclusion effects, groups
// and party summaries.
type SettlementService struct {
	loader      SnapshotLoader
	cache       BalanceCache
	metrics     *metrics.Metrics
	policy      settlement.RoundingPolicy
	maxParallel int
}

// NewSettlementService creates a SettlementService. cache and m may be nil.
func NewSettlementService(loader SnapshotLoader, cache BalanceCache, m *metrics.Metrics, cfg *config.Config) (*SettlementService, error) {
	policy, err := settlement.ParseRoundingPolicy(cfg.Settlement.RoundingPolicy)
	if err != nil {
		return nil, fmt.Errorf("settlement_service: %w", err)
	}
	parallel := cfg.Settlement.MaxParallel
	if parallel < 1 {
		parallel = 1
	}
	if cache == nil {
		cache = noCache{}
	}
	return &SettlementService{
		loader:      loader,
		cache:       cache,
		metrics:     m,
		policy:      policy,
		maxParallel: parallel,
	}, nil
}

// Policy returns the rounding policy balances are computed with.
func (s *SettlementService) Policy() settlement.RoundingPolicy { return s.policy }

// ──────────────────────────────────────────────────────────────────────────────
// Balances
// ──────────────────────────────────────────────────────────────────────────────

// SettleChampionship returns the balance of one championship, filtered.
func (s *SettlementService) SettleChampionship(ctx context.Context, id uuid.UUID, filter settlement.Filter) (res *settlement.ChampionshipBalance, err error) {
	defer func(start time.Time) { s.metrics.ObserveSettlement("single", start, err) }(time.Now())

	balances, err := s.balances(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	out := balances[0].Filtered(filter)
	return &out, nil
}

// SettleMultiple consolidates several championships by bettor display name.
// Duplicate ids are settled once; the house, when present anywhere, is the
// last entry.
func (s *SettlementService) SettleMultiple(ctx context.Context, ids []uuid.UUID, filter settlement.Filter) (res *settlement.MultiBalance, err error) {
	defer func(start time.Time) { s.metrics.ObserveSettlement("multiple", start, err) }(time.Now())

	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "at least one championship id is required")
	}

	balances, err := s.balances(ctx, ids)
	if err != nil {
		return nil, err
	}
	merged := settlement.Merge(balances, s.policy).Filtered(filter)
	return &merged, nil
}

// balances returns the unfiltered balance of every id, in order. Cached
// results are reused; the misses are loaded in one bulk pass and settled
// concurrently. The generation of each miss is read before the load, so a
// result computed from data invalidated mid-load is never cached.
func (s *SettlementService) balances(ctx context.Context, ids []uuid.UUID) ([]settlement.ChampionshipBalance, error) {
	out := make([]settlement.ChampionshipBalance, len(ids))
	var missIDs []uuid.UUID
	var missPos []int
	gens := make(map[uuid.UUID]int64)

	for i, id := range ids {
		b, ok, err := s.cache.GetBalance(ctx, id, s.policy)
		if err != nil {
			log.WithField("championship_id", id).WithError(err).Warn("settlement cache read failed")
		}
		if ok {
			s.metrics.CacheHit()
			out[i] = *b
			continue
		}
		s.metrics.CacheMiss()
		missIDs = append(missIDs, id)
		missPos = append(missPos, i)

		gen, err := s.cache.Generation(ctx, id)
		if err != nil {
			log.WithField("championship_id", id).WithError(err).Warn("settlement cache generation read failed")
			continue
		}
		gens[id] = gen
	}
	if len(missIDs) == 0 {
		return out, nil
	}

	snaps, err := s.loader.LoadSnapshots(ctx, missIDs)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.balances: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for k := range snaps {
		k := k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[missPos[k]] = settlement.NewLedger(snaps[k]).Consolidate(s.policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("settlement_service.balances: %w", err)
	}

	for _, pos := range missPos {
		gen, ok := gens[out[pos].ChampionshipID]
		if !ok {
			continue
		}
		if err := s.cache.SetBalance(ctx, s.policy, gen, &out[pos]); err != nil {
			log.WithField("championship_id", out[pos].ChampionshipID).WithError(err).Warn("settlement cache write failed")
		}
	}
	return out, nil
}

type noCache struct{}

func (noCache) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (noCache) GetBalance(context.Context, uuid.UUID, settlement.RoundingPolicy) (*settlement.ChampionshipBalance, bool, error) {
	return nil, false, nil
}

func (noCache) SetBalance(context.Context, settlement.RoundingPolicy, int64, *settlement.ChampionshipBalance) error {
	return nil
}

func (noCache) Invalidate(context.Context, uuid.UUID) error { return nil }

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────────────────────────────────

func (s *SettlementService) ledger(ctx context.Context, id uuid.UUID) (*settlement.Ledger, error) {
	snaps, err := s.loader.LoadSnapshots(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, domain.ErrChampionshipNotFound
	}
	return settlement.NewLedger(snaps[0]), nil
}

// WinnerReport lists, per declared winner, the bettors it pays.
func (s *SettlementService) WinnerReport(ctx context.Context, id uuid.UUID) ([]settlement.WinnerPayout, error) {
	l, err := s.ledger(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.WinnerReport: %w", err)
	}
	return l.WinnerReport(), nil
}

// PossibleWinners is resolveWinnersWithBettors: the shortlist with the bettor
// and prize breakdown, grouped by round type or flat without finals.
func (s *SettlementService) PossibleWinners(ctx context.Context, id uuid.UUID, grouped bool) (*settlement.PossibleWinnersReport, error) {
	l, err := s.ledger(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.PossibleWinners: %w", err)
	}
	r := l.PossibleWinners(grouped)
	return &r, nil
}

// ExclusionDetails reports the stake each excluded pair removes per round.
func (s *SettlementService) ExclusionDetails(ctx context.Context, id uuid.UUID) ([]settlement.ExclusionDetail, error) {
	l, err := s.ledger(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.ExclusionDetails: %w", err)
	}
	return l.ExclusionDetails(), nil
}

// Groups lists the combined-bettor groups of a championship.
func (s *SettlementService) Groups(ctx context.Context, id uuid.UUID) ([]domain.Group, error) {
	l, err := s.ledger(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.Groups: %w", err)
	}
	return l.Groups().List(), nil
}

// Parties summarizes what each group and individual played.
func (s *SettlementService) Parties(ctx context.Context, id uuid.UUID) ([]settlement.PartySummary, error) {
	l, err := s.ledger(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.Parties: %w", err)
	}
	return l.PartySummaries(), nil
}
