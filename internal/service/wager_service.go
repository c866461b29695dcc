package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/metrics"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// WagerService ingests tokenized slip batches.
type WagerService struct {
	db         *sqlx.DB
	champRepo  *repository.ChampionshipRepository
	rtRepo     *repository.RoundTypeRepository
	pairRepo   *repository.PairRepository
	bettorRepo *repository.BettorRepository
	wagerRepo  *repository.WagerRepository
	cache      Invalidator
	metrics    *metrics.Metrics
}

// NewWagerService creates a new WagerService.
func NewWagerService(
	db *sqlx.DB,
	champRepo *repository.ChampionshipRepository,
	rtRepo *repository.RoundTypeRepository,
	pairRepo *repository.PairRepository,
	bettorRepo *repository.BettorRepository,
	wagerRepo *repository.WagerRepository,
	cache Invalidator,
	m *metrics.Metrics,
) *WagerService {
	return &WagerService{
		db:         db,
		champRepo:  champRepo,
		rtRepo:     rtRepo,
		pairRepo:   pairRepo,
		bettorRepo: bettorRepo,
		wagerRepo:  wagerRepo,
		cache:      cache,
		metrics:    m,
	}
}

// ReplaceResult reports what a batch replacement wrote.
type ReplaceResult struct {
	RoundName    string   `json:"round_name"`
	Inserted     int      `json:"inserted"`
	Replaced     int64    `json:"replaced"`
	Bettors      int      `json:"bettors"`
	SkippedPairs []string `json:"skipped_pairs"`
}

// ReplaceBatch validates and allocates every slip of batch, then atomically
// replaces the wagers stored for (championship, round type, round name).
// Slips naming a pair that is not registered are skipped and reported.
// Nothing is written when any slip is malformed.
func (s *WagerService) ReplaceBatch(ctx context.Context, championshipID, roundTypeID uuid.UUID, batch *domain.SlipBatch) (*ReplaceResult, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	slips, err := allocateBatch(batch)
	if err != nil {
		return nil, err
	}

	if _, err := s.champRepo.GetByID(ctx, championshipID); err != nil {
		return nil, err
	}
	if _, err := s.rtRepo.GetByID(ctx, roundTypeID); err != nil {
		return nil, err
	}

	roundName := strings.TrimSpace(batch.RoundName)
	res := &ReplaceResult{RoundName: roundName, SkippedPairs: []string{}}

	err = repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		pairs, err := s.pairRepo.NumbersByRoundType(ctx, tx, championshipID, roundTypeID)
		if err != nil {
			return err
		}

		bettors := make(map[string]uuid.UUID)
		resolve := func(name string) (uuid.UUID, error) {
			key := strings.ToLower(name)
			if id, ok := bettors[key]; ok {
				return id, nil
			}
			b, err := s.bettorRepo.FindOrCreate(ctx, tx, name)
			if err != nil {
				return uuid.Nil, err
			}
			bettors[key] = b.ID
			return b.ID, nil
		}

		wagers, skipped, err := buildWagers(championshipID, roundTypeID, batch, slips, pairs, resolve, uuid.New)
		if err != nil {
			return err
		}
		for _, sk := range skipped {
			log.WithFields(log.Fields{
				"championship_id": championshipID,
				"round_type_id":   roundTypeID,
				"round_name":      roundName,
				"pair_number":     sk.number,
				"line":            sk.line,
			}).Warn("slip skipped: pair not registered")
			res.SkippedPairs = append(res.SkippedPairs, sk.number)
		}

		replaced, err := s.wagerRepo.ReplaceBatch(ctx, tx, championshipID, roundTypeID, roundName, wagers)
		if err != nil {
			return err
		}
		res.Inserted = len(wagers)
		res.Replaced = replaced
		res.Bettors = len(bettors)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("wager_service.ReplaceBatch: %w", err)
	}

	invalidate(ctx, s.cache, championshipID, "wagers.replace")
	s.metrics.WagersInserted(res.Inserted)
	s.metrics.PairsSkipped(len(res.SkippedPairs))

	log.WithFields(log.Fields{
		"championship_id": championshipID,
		"round_type_id":   roundTypeID,
		"round_name":      roundName,
		"inserted":        res.Inserted,
		"replaced":        res.Replaced,
		"skipped":         len(res.SkippedPairs),
	}).Info("wager batch replaced")
	return res, nil
}

// ListRound returns the stored wagers of one round.
func (s *WagerService) ListRound(ctx context.Context, championshipID, roundTypeID uuid.UUID, roundName string) ([]domain.WagerView, error) {
	roundName = strings.TrimSpace(roundName)
	if roundName == "" {
		return nil, domain.NewValidationError("round_name", "must not be empty")
	}
	out, err := s.wagerRepo.ListByRound(ctx, championshipID, roundTypeID, roundName)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.WagerView{}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Batch building
// ──────────────────────────────────────────────────────────────────────────────

type allocatedSlip struct {
	slip   domain.Slip
	allocs []domain.Allocation
}

type skippedSlip struct {
	number string
	line   int
}

// allocateBatch splits every slip before anything touches the database.
func allocateBatch(b *domain.SlipBatch) ([]allocatedSlip, error) {
	out := make([]allocatedSlip, 0, len(b.Slips))
	for _, sl := range b.Slips {
		allocs, err := domain.AllocateSlip(sl)
		if err != nil {
			return nil, err
		}
		out = append(out, allocatedSlip{slip: sl, allocs: allocs})
	}
	return out, nil
}

// buildWagers turns allocated slips into wager rows. pairs maps padded pair
// numbers to ids; bettorID resolves a display name to a bettor id.
func buildWagers(
	championshipID, roundTypeID uuid.UUID,
	b *domain.SlipBatch,
	slips []allocatedSlip,
	pairs map[string]uuid.UUID,
	bettorID func(name string) (uuid.UUID, error),
	newID func() uuid.UUID,
) ([]domain.Wager, []skippedSlip, error) {
	roundName := strings.TrimSpace(b.RoundName)
	prize := b.PrizeAfterWithdrawal()

	var wagers []domain.Wager
	var skipped []skippedSlip
	for _, as := range slips {
		number := domain.PadPairNumber(as.slip.PairNumber)
		pairID, ok := pairs[number]
		if !ok {
			skipped = append(skipped, skippedSlip{number: number, line: as.slip.Line})
			continue
		}
		for _, a := range as.allocs {
			bid, err := bettorID(a.BettorName)
			if err != nil {
				return nil, nil, err
			}
			wagers = append(wagers, domain.Wager{
				ID:                   newID(),
				ChampionshipID:       championshipID,
				RoundTypeID:          roundTypeID,
				RoundName:            roundName,
				PairID:               pairID,
				BettorID:             bid,
				StakeShare:           a.StakeShare,
				StakeTotalOriginal:   a.StakeTotal,
				BetSharePercent:      a.Percent,
				PrizeSharePercent:    a.PrizeSharePercent,
				PrizeAfterWithdrawal: prize,
				PrizePoolOriginal:    *b.PrizePool,
				WithdrawalPercent:    *b.WithdrawalPercent,
			})
		}
	}
	return wagers, skipped, nil
}
