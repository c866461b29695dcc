package settlement

import (
	"sort"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// excludedKey identifies an excluded pair: (round type, padded pair number).
type excludedKey struct {
	roundTypeID uuid.UUID
	number      string
}

// ExclusionIndex holds, per round, the stake removed from the prize base by
// retroactively excluded pairs.
//
//	adjustedPrizeBase = prizePoolOriginal − roundExcludedTotal − bettorExcludedTotal
//
// The bettor-level amount is subtracted on top of the round-level amount that
// already contains it.
type ExclusionIndex struct {
	excluded     map[excludedKey]domain.ExcludedPair
	pairs        map[uuid.UUID]*domain.Pair
	roundTotals  map[RoundKey]decimal.Decimal
	bettorTotals map[RoundKey]map[uuid.UUID]decimal.Decimal

	// per excluded pair and round: stake removed and wager count
	pairRounds map[excludedKey]map[string]*excludedRound
	// round names seen per round type, for reporting rounds with no wagers
	roundsByType map[uuid.UUID]map[string]struct{}
}

type excludedRound struct {
	amount decimal.Decimal
	count  int
}

// NewExclusionIndex sums the stake share of every active wager sitting on an
// excluded pair, per round and per bettor within the round.
func NewExclusionIndex(active []*domain.Wager, pairs map[uuid.UUID]*domain.Pair, exclusions []domain.ExcludedPair) *ExclusionIndex {
	x := &ExclusionIndex{
		excluded:     make(map[excludedKey]domain.ExcludedPair, len(exclusions)),
		pairs:        pairs,
		roundTotals:  make(map[RoundKey]decimal.Decimal),
		bettorTotals: make(map[RoundKey]map[uuid.UUID]decimal.Decimal),
		pairRounds:   make(map[excludedKey]map[string]*excludedRound),
		roundsByType: make(map[uuid.UUID]map[string]struct{}),
	}
	for _, e := range exclusions {
		x.excluded[excludedKey{roundTypeID: e.RoundTypeID, number: domain.PadPairNumber(e.PairNumber)}] = e
	}

	for _, w := range active {
		key := KeyOf(w)
		if x.roundsByType[key.RoundTypeID] == nil {
			x.roundsByType[key.RoundTypeID] = make(map[string]struct{})
		}
		x.roundsByType[key.RoundTypeID][key.RoundName] = struct{}{}

		ek, ok := x.keyOf(w)
		if !ok {
			continue
		}
		if _, excluded := x.excluded[ek]; !excluded {
			continue
		}

		x.roundTotals[key] = x.roundTotals[key].Add(w.StakeShare)
		if x.bettorTotals[key] == nil {
			x.bettorTotals[key] = make(map[uuid.UUID]decimal.Decimal)
		}
		x.bettorTotals[key][w.BettorID] = x.bettorTotals[key][w.BettorID].Add(w.StakeShare)

		if x.pairRounds[ek] == nil {
			x.pairRounds[ek] = make(map[string]*excludedRound)
		}
		r := x.pairRounds[ek][key.RoundName]
		if r == nil {
			r = &excludedRound{}
			x.pairRounds[ek][key.RoundName] = r
		}
		r.amount = r.amount.Add(w.StakeShare)
		r.count++
	}
	return x
}

func (x *ExclusionIndex) keyOf(w *domain.Wager) (excludedKey, bool) {
	p := x.pairs[w.PairID]
	if p == nil {
		return excludedKey{}, false
	}
	return excludedKey{roundTypeID: w.RoundTypeID, number: domain.PadPairNumber(p.Number)}, true
}

// IsExcluded reports whether w sits on an excluded pair.
func (x *ExclusionIndex) IsExcluded(w *domain.Wager) bool {
	ek, ok := x.keyOf(w)
	if !ok {
		return false
	}
	_, excluded := x.excluded[ek]
	return excluded
}

// RoundExcluded is the total stake share on excluded pairs within the round.
func (x *ExclusionIndex) RoundExcluded(k RoundKey) decimal.Decimal {
	return x.roundTotals[k]
}

// BettorExcluded is the bettor's own stake share on excluded pairs within the round.
func (x *ExclusionIndex) BettorExcluded(k RoundKey, bettorID uuid.UUID) decimal.Decimal {
	return x.bettorTotals[k][bettorID]
}

// AdjustedPrizeBase returns prizePoolOriginal − roundExcluded − bettorExcluded
// for the round and bettor of w. A round without exclusions keeps its
// original pool.
func (x *ExclusionIndex) AdjustedPrizeBase(w *domain.Wager) decimal.Decimal {
	k := KeyOf(w)
	return w.PrizePoolOriginal.Sub(x.RoundExcluded(k)).Sub(x.BettorExcluded(k, w.BettorID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Report
// ──────────────────────────────────────────────────────────────────────────────

// ExcludedRoundDetail is the effect of one excluded pair on one round.
type ExcludedRoundDetail struct {
	RoundName         string        `json:"nomeRodada"`
	ValorExcluido     domain.Amount `json:"valorExcluido"`
	TemApostasAtivas  bool          `json:"temApostasAtivas"`
	QuantidadeApostas int           `json:"quantidadeApostas"`
}

// ExclusionDetail describes one excluded pair and the rounds of its round type.
type ExclusionDetail struct {
	ID            uuid.UUID             `json:"id"`
	RoundTypeID   uuid.UUID             `json:"tipoRodadaId"`
	RoundTypeName string                `json:"tipoRodada"`
	PairNumber    string                `json:"numeroPareo"`
	RawText       string                `json:"dadosPareo"`
	Rounds        []ExcludedRoundDetail `json:"rodadas"`
}

// ExclusionDetails reports every excluded pair with the stake it removes from
// each round of its round type. Rounds where the pair has no active wagers are
// listed with a zero amount.
func (l *Ledger) ExclusionDetails() []ExclusionDetail {
	x := l.exclusions
	out := make([]ExclusionDetail, 0, len(l.snap.Exclusions))
	for _, e := range l.snap.Exclusions {
		ek := excludedKey{roundTypeID: e.RoundTypeID, number: domain.PadPairNumber(e.PairNumber)}
		d := ExclusionDetail{
			ID:            e.ID,
			RoundTypeID:   e.RoundTypeID,
			RoundTypeName: l.RoundTypeName(e.RoundTypeID),
			PairNumber:    ek.number,
			RawText:       e.RawText,
		}

		names := make([]string, 0, len(x.roundsByType[e.RoundTypeID]))
		for name := range x.roundsByType[e.RoundTypeID] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			rd := ExcludedRoundDetail{RoundName: name, ValorExcluido: domain.NewAmount(decimal.Zero)}
			if r := x.pairRounds[ek][name]; r != nil {
				rd.ValorExcluido = domain.NewAmount(r.amount)
				rd.TemApostasAtivas = r.count > 0
				rd.QuantidadeApostas = r.count
			}
			d.Rounds = append(d.Rounds, rd)
		}
		out = append(out, d)
	}
	return out
}
