package settlement_test

import (
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixture builds a championship snapshot the way the wager service stores
// rows: slips go through domain.AllocateSlip.
type fixture struct {
	t       *testing.T
	snap    *settlement.Snapshot
	types   map[string]uuid.UUID
	pairIDs map[string]uuid.UUID
	bettors map[string]uuid.UUID
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()
	return &fixture{
		t:       t,
		snap:    &settlement.Snapshot{Championship: domain.Championship{ID: uuid.New(), Name: name}},
		types:   make(map[string]uuid.UUID),
		pairIDs: make(map[string]uuid.UUID),
		bettors: make(map[string]uuid.UUID),
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func p(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func (f *fixture) roundType(name string) uuid.UUID {
	if id, ok := f.types[name]; ok {
		return id
	}
	id := uuid.New()
	f.types[name] = id
	f.snap.RoundTypes = append(f.snap.RoundTypes, domain.RoundType{ID: id, Name: name})
	return id
}

func (f *fixture) pair(roundType, number string, contestants ...string) uuid.UUID {
	rt := f.roundType(roundType)
	pr := domain.Pair{ID: uuid.New(), ChampionshipID: f.snap.Championship.ID, RoundTypeID: rt, Number: number}
	for i, c := range contestants {
		pr.Contestants = append(pr.Contestants, domain.Contestant{ID: uuid.New(), PairID: pr.ID, Name: c, Position: i})
	}
	f.snap.Pairs = append(f.snap.Pairs, pr)
	f.pairIDs[roundType+"/"+number] = pr.ID
	return pr.ID
}

func (f *fixture) contestant(roundType, number, name string) uuid.UUID {
	id := f.pairIDs[roundType+"/"+number]
	for _, pr := range f.snap.Pairs {
		if pr.ID != id {
			continue
		}
		for _, c := range pr.Contestants {
			if c.Name == name {
				return c.ID
			}
		}
	}
	f.t.Fatalf("contestant %s not found in %s/%s", name, roundType, number)
	return uuid.Nil
}

func (f *fixture) bettor(name string) uuid.UUID {
	if id, ok := f.bettors[name]; ok {
		return id
	}
	id := uuid.New()
	f.bettors[name] = id
	f.snap.Bettors = append(f.snap.Bettors, domain.Bettor{ID: id, Name: name})
	return id
}

// slip allocates one slip of a round batch (pool and withdrawal are the batch header).
func (f *fixture) slip(roundType, round, number, pool, withdrawal, stake string, entries ...domain.SlipEntry) {
	f.t.Helper()
	batch := domain.SlipBatch{RoundName: round, PrizePool: p(pool), WithdrawalPercent: p(withdrawal)}
	allocs, err := domain.AllocateSlip(domain.Slip{PairNumber: number, Stake: d(stake), Entries: entries})
	require.NoError(f.t, err)

	for _, a := range allocs {
		f.snap.Wagers = append(f.snap.Wagers, domain.Wager{
			ID:                   uuid.New(),
			ChampionshipID:       f.snap.Championship.ID,
			RoundTypeID:          f.roundType(roundType),
			RoundName:            round,
			PairID:               f.pairIDs[roundType+"/"+number],
			BettorID:             f.bettor(a.BettorName),
			StakeShare:           a.StakeShare,
			StakeTotalOriginal:   a.StakeTotal,
			BetSharePercent:      a.Percent,
			PrizeSharePercent:    a.PrizeSharePercent,
			PrizeAfterWithdrawal: batch.PrizeAfterWithdrawal(),
			PrizePoolOriginal:    *batch.PrizePool,
			WithdrawalPercent:    *batch.WithdrawalPercent,
		})
	}
}

func (f *fixture) winner(name string) {
	f.snap.Winners = append(f.snap.Winners, domain.Winner{ID: uuid.New(), ChampionshipID: f.snap.Championship.ID, ContestantName: name})
}

func (f *fixture) exclude(roundType, number string) {
	f.snap.Exclusions = append(f.snap.Exclusions, domain.ExcludedPair{
		ID: uuid.New(), ChampionshipID: f.snap.Championship.ID, RoundTypeID: f.roundType(roundType), PairNumber: number,
	})
}

func (f *fixture) override(round string) {
	f.snap.Overrides = append(f.snap.Overrides, domain.RoundWinnerOverride{ID: uuid.New(), ChampionshipID: f.snap.Championship.ID, RoundName: round})
}

func (f *fixture) house(round, amount string) {
	f.snap.HouseStakes = append(f.snap.HouseStakes, domain.HouseRoundStake{ID: uuid.New(), ChampionshipID: f.snap.Championship.ID, RoundName: round, Amount: d(amount)})
}

func (f *fixture) group(id string, names ...string) {
	for _, n := range names {
		f.snap.Groups = append(f.snap.Groups, domain.GroupMember{ID: uuid.New(), ChampionshipID: f.snap.Championship.ID, GroupIdentifier: id, BettorName: settlement.CleanName(n)})
	}
}

func (f *fixture) possible(roundType, number, contestant string, isWinner bool) {
	f.snap.PossibleWinners = append(f.snap.PossibleWinners, domain.PossibleWinner{
		ID:             uuid.New(),
		ChampionshipID: f.snap.Championship.ID,
		RoundTypeID:    f.roundType(roundType),
		ContestantID:   f.contestant(roundType, number, contestant),
		IsWinner:       isWinner,
	})
}

func (f *fixture) ledger() *settlement.Ledger { return settlement.NewLedger(f.snap) }

func entry(name string, percent ...string) domain.SlipEntry {
	e := domain.SlipEntry{Name: name}
	if len(percent) > 0 {
		e.Percent = p(percent[0])
	}
	return e
}

func find(t *testing.T, parties []settlement.PartyBalance, name string) settlement.PartyBalance {
	t.Helper()
	for _, pb := range parties {
		if pb.Nome == name {
			return pb
		}
	}
	t.Fatalf("party %q not in report %+v", name, parties)
	return settlement.PartyBalance{}
}

func hasParty(parties []settlement.PartyBalance, name string) bool {
	for _, pb := range parties {
		if pb.Nome == name {
			return true
		}
	}
	return false
}

// referenceScenario is championship "X": Bracket pair 01 [Red, Blue], slip
// "01- 1000.00 Ana 60% / Bruno" in round R01 with a 10 % withdrawal.
func referenceScenario(t *testing.T) *fixture {
	f := newFixture(t, "X")
	f.pair("Bracket", "01", "Red", "Blue")
	f.slip("Bracket", "R01", "01", "1000.00", "10", "1000.00", entry("Ana", "60"), entry("Bruno"))
	return f
}
