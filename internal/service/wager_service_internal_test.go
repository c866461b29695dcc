package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func batchOf(slips ...domain.Slip) *domain.SlipBatch {
	return &domain.SlipBatch{
		RoundName:         " R01 ",
		PrizePool:         ptr("1000"),
		WithdrawalPercent: ptr("10"),
		Slips:             slips,
	}
}

func fakeBettors() (map[string]uuid.UUID, func(string) (uuid.UUID, error)) {
	ids := make(map[string]uuid.UUID)
	return ids, func(name string) (uuid.UUID, error) {
		key := strings.ToLower(name)
		if id, ok := ids[key]; ok {
			return id, nil
		}
		id := uuid.New()
		ids[key] = id
		return id, nil
	}
}

func TestBuildWagersReferenceSlip(t *testing.T) {
	champ, rt, pairID := uuid.New(), uuid.New(), uuid.New()
	b := batchOf(domain.Slip{
		PairNumber: "1",
		Stake:      decimal.RequireFromString("1000"),
		Entries:    []domain.SlipEntry{{Name: "Ana", Percent: ptr("60")}, {Name: "Bruno"}},
		Line:       1,
	})

	slips, err := allocateBatch(b)
	require.NoError(t, err)

	ids, resolve := fakeBettors()
	wagers, skipped, err := buildWagers(champ, rt, b, slips, map[string]uuid.UUID{"01": pairID}, resolve, uuid.New)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, wagers, 2)

	ana, bruno := wagers[0], wagers[1]
	assert.Equal(t, "R01", ana.RoundName)
	assert.Equal(t, pairID, ana.PairID)
	assert.Equal(t, ids["ana"], ana.BettorID)
	assert.True(t, ana.StakeShare.Equal(decimal.NewFromInt(600)))
	assert.True(t, bruno.StakeShare.Equal(decimal.NewFromInt(400)))
	assert.True(t, bruno.BetSharePercent.Equal(decimal.NewFromInt(40)))
	assert.True(t, bruno.PrizeSharePercent.Equal(bruno.BetSharePercent))
	assert.True(t, ana.PrizeAfterWithdrawal.Equal(decimal.NewFromInt(900)))
	assert.True(t, ana.PrizePoolOriginal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, ana.StakeTotalOriginal.Equal(decimal.NewFromInt(1000)))
	assert.NotEqual(t, ana.ID, bruno.ID)
}

func TestBuildWagersSkipsUnknownPairs(t *testing.T) {
	b := batchOf(
		domain.Slip{PairNumber: "01", Stake: decimal.NewFromInt(100), Entries: []domain.SlipEntry{{Name: "Ana"}}, Line: 1},
		domain.Slip{PairNumber: "7", Stake: decimal.NewFromInt(50), Entries: []domain.SlipEntry{{Name: "Bruno"}}, Line: 2},
	)
	slips, err := allocateBatch(b)
	require.NoError(t, err)

	_, resolve := fakeBettors()
	wagers, skipped, err := buildWagers(uuid.New(), uuid.New(), b, slips, map[string]uuid.UUID{"01": uuid.New()}, resolve, uuid.New)
	require.NoError(t, err)
	assert.Len(t, wagers, 1)
	require.Len(t, skipped, 1)
	assert.Equal(t, "07", skipped[0].number)
	assert.Equal(t, 2, skipped[0].line)
}

func TestBuildWagersReusesBettorAcrossCase(t *testing.T) {
	b := batchOf(
		domain.Slip{PairNumber: "01", Stake: decimal.NewFromInt(100), Entries: []domain.SlipEntry{{Name: "Ana"}}, Line: 1},
		domain.Slip{PairNumber: "01", Stake: decimal.NewFromInt(100), Entries: []domain.SlipEntry{{Name: "ANA"}}, Line: 2},
	)
	slips, err := allocateBatch(b)
	require.NoError(t, err)

	ids, resolve := fakeBettors()
	wagers, _, err := buildWagers(uuid.New(), uuid.New(), b, slips, map[string]uuid.UUID{"01": uuid.New()}, resolve, uuid.New)
	require.NoError(t, err)
	require.Len(t, wagers, 2)
	assert.Len(t, ids, 1)
	assert.Equal(t, wagers[0].BettorID, wagers[1].BettorID)
}

func TestBuildWagersPropagatesResolverError(t *testing.T) {
	b := batchOf(domain.Slip{PairNumber: "01", Stake: decimal.NewFromInt(100), Entries: []domain.SlipEntry{{Name: "Ana"}}, Line: 1})
	slips, err := allocateBatch(b)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = buildWagers(uuid.New(), uuid.New(), b, slips, map[string]uuid.UUID{"01": uuid.New()},
		func(string) (uuid.UUID, error) { return uuid.Nil, boom }, uuid.New)
	assert.ErrorIs(t, err, boom)
}

func TestAllocateBatchRejectsOverAllocatedSlip(t *testing.T) {
	b := batchOf(domain.Slip{
		PairNumber: "01",
		Stake:      decimal.NewFromInt(100),
		Entries:    []domain.SlipEntry{{Name: "Ana", Percent: ptr("70")}, {Name: "Bruno", Percent: ptr("50")}},
		Line:       3,
	})
	_, err := allocateBatch(b)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestDedupeIDsKeepsFirstOccurrence(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{b, a}, dedupeIDs([]uuid.UUID{b, a, b, a}))
	assert.Empty(t, dedupeIDs(nil))
}
