// Package settlement turns stored wager facts into prize pools, winnings and
// balances. Everything here is a pure function of a Snapshot: no I/O, no
// locking, safe to run concurrently on independent snapshots.
package settlement

import (
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is every row of one championship needed for settlement, loaded in
// bulk (one query per entity type).
type Snapshot struct {
	Championship    domain.Championship
	RoundTypes      []domain.RoundType
	Pairs           []domain.Pair
	Bettors         []domain.Bettor
	Wagers          []domain.Wager
	Exclusions      []domain.ExcludedPair
	Winners         []domain.Winner
	Overrides       []domain.RoundWinnerOverride
	Groups          []domain.GroupMember
	HouseStakes     []domain.HouseRoundStake
	PossibleWinners []domain.PossibleWinner
}

// RoundKey identifies a round inside a championship: the batch key that a
// wager batch replaces.
type RoundKey struct {
	RoundTypeID uuid.UUID
	RoundName   string
}

// KeyOf returns the round key of w.
func KeyOf(w *domain.Wager) RoundKey {
	return RoundKey{RoundTypeID: w.RoundTypeID, RoundName: strings.TrimSpace(w.RoundName)}
}

// Ledger is the in-memory relational index built from a Snapshot: lookup maps
// by pair, bettor, contestant and round, plus the exclusion and winner indexes.
type Ledger struct {
	snap *Snapshot

	roundTypes  map[uuid.UUID]domain.RoundType
	pairs       map[uuid.UUID]*domain.Pair
	contestants map[uuid.UUID]contestantRef
	bettors     map[uuid.UUID]domain.Bettor
	active      []*domain.Wager

	exclusions *ExclusionIndex
	winners    *WinnerIndex
	groups     *GroupIndex
}

type contestantRef struct {
	contestant domain.Contestant
	pair       *domain.Pair
}

// NewLedger indexes s. The snapshot must not be modified afterwards.
func NewLedger(s *Snapshot) *Ledger {
	l := &Ledger{
		snap:        s,
		roundTypes:  make(map[uuid.UUID]domain.RoundType, len(s.RoundTypes)),
		pairs:       make(map[uuid.UUID]*domain.Pair, len(s.Pairs)),
		contestants: make(map[uuid.UUID]contestantRef),
		bettors:     make(map[uuid.UUID]domain.Bettor, len(s.Bettors)),
	}
	for _, rt := range s.RoundTypes {
		l.roundTypes[rt.ID] = rt
	}
	for i := range s.Pairs {
		p := &s.Pairs[i]
		l.pairs[p.ID] = p
		for _, c := range p.Contestants {
			l.contestants[c.ID] = contestantRef{contestant: c, pair: p}
		}
	}
	for _, b := range s.Bettors {
		l.bettors[b.ID] = b
	}
	for i := range s.Wagers {
		w := &s.Wagers[i]
		if w.IsActive() {
			l.active = append(l.active, w)
		}
	}

	l.exclusions = NewExclusionIndex(l.active, l.pairs, s.Exclusions)
	l.winners = NewWinnerIndex(s.Winners, s.Overrides)
	l.groups = NewGroupIndex(s.Groups)
	return l
}

// Championship returns the settled championship.
func (l *Ledger) Championship() domain.Championship { return l.snap.Championship }

// Exclusions exposes the exclusion index.
func (l *Ledger) Exclusions() *ExclusionIndex { return l.exclusions }

// Winners exposes the winner index.
func (l *Ledger) Winners() *WinnerIndex { return l.winners }

// Groups exposes the group index.
func (l *Ledger) Groups() *GroupIndex { return l.groups }

// ActiveWagers returns the wagers with a positive stake share and a positive
// prize after withdrawal, in load order.
func (l *Ledger) ActiveWagers() []*domain.Wager { return l.active }

// Pair returns the pair of w, or nil when the pair row is missing.
func (l *Ledger) Pair(id uuid.UUID) *domain.Pair { return l.pairs[id] }

// BettorName returns the stored name of the bettor, or "" if unknown.
func (l *Ledger) BettorName(id uuid.UUID) string { return l.bettors[id].Name }

// RoundTypeName returns the round type name, or "" if unknown.
func (l *Ledger) RoundTypeName(id uuid.UUID) string { return l.roundTypes[id].Name }

// Payable is the amount w pays when its pair wins, after exclusion adjustment
// and withdrawal, at full precision:
//
//	afterWithdraw = adjustedPrizeBase × (1 − withdrawalPercent/100)
//	payable       = afterWithdraw × prizeSharePercent/100
//
// Wagers on excluded pairs pay nothing.
func (l *Ledger) Payable(w *domain.Wager) decimal.Decimal {
	if l.exclusions.IsExcluded(w) {
		return decimal.Zero
	}
	base := l.exclusions.AdjustedPrizeBase(w)
	after := domain.NetOfWithdrawal(base, w.WithdrawalPercent)
	return domain.PercentOf(after, w.PrizeSharePercent)
}

// Qualifies reports whether w pays under general winner accounting: its pair
// holds a declared winner by name, the pair is not excluded and its round is
// not overridden.
func (l *Ledger) Qualifies(w *domain.Wager) bool {
	if l.exclusions.IsExcluded(w) {
		return false
	}
	if l.winners.IsOverridden(w.RoundName) {
		return false
	}
	p := l.pairs[w.PairID]
	if p == nil {
		return false
	}
	return l.winners.MatchesPair(p)
}
