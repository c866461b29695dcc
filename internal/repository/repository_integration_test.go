//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/EvertonDSS/corrida-app11/internal/repository/testutil"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seeded struct {
	champ   domain.Championship
	rt      domain.RoundType
	pair    domain.Pair
	ana     *domain.Bettor
	winners []uuid.UUID
}

// seed stores championship "X" with Bracket pair 01 [Red, Blue] and the
// R01 wagers of Ana (600 / 60 %) and Bruno (400 / 40 %).
func seed(t *testing.T, db *sqlx.DB) seeded {
	t.Helper()
	ctx := context.Background()
	var s seeded

	s.champ = domain.Championship{ID: uuid.New(), Name: "X"}
	require.NoError(t, repository.NewChampionshipRepository(db).Create(ctx, &s.champ))
	s.rt = domain.RoundType{ID: uuid.New(), Name: "Bracket"}
	require.NoError(t, repository.NewRoundTypeRepository(db).Create(ctx, &s.rt))

	s.pair = domain.Pair{
		ID: uuid.New(), ChampionshipID: s.champ.ID, RoundTypeID: s.rt.ID, Number: "1",
		Contestants: []domain.Contestant{{Name: "Red"}, {Name: "Blue"}},
	}
	bettors := repository.NewBettorRepository(db)
	wagers := repository.NewWagerRepository(db)

	require.NoError(t, repository.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := repository.NewPairRepository(db).CreateWithContestants(ctx, tx, &s.pair); err != nil {
			return err
		}
		ana, err := bettors.FindOrCreate(ctx, tx, "Ana")
		if err != nil {
			return err
		}
		bruno, err := bettors.FindOrCreate(ctx, tx, "Bruno")
		if err != nil {
			return err
		}
		s.ana = ana
		row := func(b *domain.Bettor, stake, pct string) domain.Wager {
			return domain.Wager{
				ID: uuid.New(), ChampionshipID: s.champ.ID, RoundTypeID: s.rt.ID, RoundName: "R01",
				PairID: s.pair.ID, BettorID: b.ID,
				StakeShare: decimal.RequireFromString(stake), StakeTotalOriginal: decimal.NewFromInt(1000),
				BetSharePercent: decimal.RequireFromString(pct), PrizeSharePercent: decimal.RequireFromString(pct),
				PrizeAfterWithdrawal: decimal.NewFromInt(900), PrizePoolOriginal: decimal.NewFromInt(1000),
				WithdrawalPercent: decimal.NewFromInt(10),
			}
		}
		_, err = wagers.ReplaceBatch(ctx, tx, s.champ.ID, s.rt.ID, "R01",
			[]domain.Wager{row(ana, "600", "60"), row(bruno, "400", "40")})
		return err
	}))
	return s
}

func TestSnapshotSettlesReferenceScenario(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	s := seed(t, td.DB)

	require.NoError(t, repository.NewWinnerRepository(td.DB).Add(ctx, s.champ.ID, s.pair.Contestants[0].ID))

	snaps, err := repository.NewSnapshotRepository(td.DB).LoadSnapshots(ctx, []uuid.UUID{s.champ.ID})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Len(t, snaps[0].Wagers, 2)
	assert.Len(t, snaps[0].Pairs[0].Contestants, 2)
	assert.Equal(t, "01", snaps[0].Pairs[0].Number)

	res := settlement.NewLedger(snaps[0]).Consolidate(settlement.FloorDifference)
	require.Len(t, res.Bettors, 2)
	assert.EqualValues(t, 540, res.Bettors[0].TotalPremiosVencidos)
	assert.EqualValues(t, 360, res.Bettors[1].TotalPremiosVencidos)
}

func TestSnapshotUnknownChampionship(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	_, err := repository.NewSnapshotRepository(td.DB).LoadSnapshots(context.Background(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, domain.ErrChampionshipNotFound)
}

func TestReplaceBatchReplacesRound(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	s := seed(t, td.DB)
	wagers := repository.NewWagerRepository(td.DB)

	var deleted int64
	require.NoError(t, repository.WithTx(ctx, td.DB, func(tx *sqlx.Tx) error {
		var err error
		deleted, err = wagers.ReplaceBatch(ctx, tx, s.champ.ID, s.rt.ID, " R01 ", nil)
		return err
	}))
	assert.EqualValues(t, 2, deleted)

	rows, err := wagers.ListByRound(ctx, s.champ.ID, s.rt.ID, "R01")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBettorFindOrCreateIsCaseInsensitive(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	s := seed(t, td.DB)

	require.NoError(t, repository.WithTx(ctx, td.DB, func(tx *sqlx.Tx) error {
		b, err := repository.NewBettorRepository(td.DB).FindOrCreate(ctx, tx, "  ANA ")
		require.NoError(t, err)
		assert.Equal(t, s.ana.ID, b.ID)
		return nil
	}))
}

func TestDeleteCascadeSummary(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	s := seed(t, td.DB)
	require.NoError(t, repository.NewExclusionRepository(td.DB).Create(ctx, &domain.ExcludedPair{
		ID: uuid.New(), ChampionshipID: s.champ.ID, RoundTypeID: s.rt.ID, PairNumber: "1",
	}))

	champs := repository.NewChampionshipRepository(td.DB)
	var summary *domain.DeletionSummary
	require.NoError(t, repository.WithTx(ctx, td.DB, func(tx *sqlx.Tx) error {
		var err error
		summary, err = champs.DeleteCascade(ctx, tx, s.champ.ID)
		return err
	}))
	assert.Equal(t, "X", summary.Championship)
	assert.EqualValues(t, 2, summary.Wagers)
	assert.EqualValues(t, 1, summary.ExcludedPairs)
	assert.EqualValues(t, 2, summary.Contestants)
	assert.EqualValues(t, 1, summary.Pairs)

	_, err := champs.GetByID(ctx, s.champ.ID)
	assert.ErrorIs(t, err, domain.ErrChampionshipNotFound)
}

func TestGroupApplyPlan(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	s := seed(t, td.DB)
	groups := repository.NewGroupRepository(td.DB)

	apply := func(specs []settlement.GroupSpec) {
		require.NoError(t, repository.WithTx(ctx, td.DB, func(tx *sqlx.Tx) error {
			existing, err := groups.ListForUpdate(ctx, tx, s.champ.ID)
			if err != nil {
				return err
			}
			plan, err := settlement.PlanDefinition(existing, specs, uuid.NewString)
			if err != nil {
				return err
			}
			_, err = groups.ApplyPlan(ctx, tx, s.champ.ID, plan)
			return err
		}))
	}
	apply([]settlement.GroupSpec{{Names: []string{"A", "B"}}})
	apply([]settlement.GroupSpec{{GroupIdentifier: "a__b", Names: []string{"A", "C"}}})

	rows, err := groups.ListByChampionship(ctx, s.champ.ID)
	require.NoError(t, err)
	var names []string
	for _, r := range rows {
		names = append(names, r.BettorName)
		assert.Equal(t, "a__b", r.GroupIdentifier)
	}
	assert.ElementsMatch(t, []string{"A", "C"}, names)

	apply([]settlement.GroupSpec{{GroupIdentifier: "g2", Names: []string{"a", "Dora"}}})
	rows, err = groups.ListByChampionship(ctx, s.champ.ID)
	require.NoError(t, err)
	got := map[string]string{}
	for _, r := range rows {
		got[r.BettorName] = r.GroupIdentifier
	}
	assert.Equal(t, map[string]string{"a": "g2", "Dora": "g2"}, got, "C is released with its old group")
}

func TestPossibleWinnerMarkWinner(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	s := seed(t, td.DB)
	repo := repository.NewPossibleWinnerRepository(td.DB)
	red, blue := s.pair.Contestants[0].ID, s.pair.Contestants[1].ID

	require.NoError(t, repository.WithTx(ctx, td.DB, func(tx *sqlx.Tx) error {
		if err := repo.Replace(ctx, tx, s.champ.ID, s.rt.ID, []uuid.UUID{red, blue}); err != nil {
			return err
		}
		if err := repo.MarkWinner(ctx, tx, s.champ.ID, s.rt.ID, red); err != nil {
			return err
		}
		return repo.MarkWinner(ctx, tx, s.champ.ID, s.rt.ID, blue)
	}))

	rows, err := repo.List(ctx, s.champ.ID)
	require.NoError(t, err)
	flagged := 0
	for _, r := range rows {
		if r.IsWinner {
			flagged++
			assert.Equal(t, blue, r.ContestantID)
		}
	}
	assert.Equal(t, 1, flagged)

	err = repository.WithTx(ctx, td.DB, func(tx *sqlx.Tx) error {
		return repo.MarkWinner(ctx, tx, s.champ.ID, s.rt.ID, uuid.New())
	})
	assert.ErrorIs(t, err, domain.ErrPossibleWinnerNotFound)
}
