package settlement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HouseName is the display name of the house pseudo-bettor.
const HouseName = "CASA"

// ──────────────────────────────────────────────────────────────────────────────
// Rounding policy
// ──────────────────────────────────────────────────────────────────────────────

// RoundingPolicy decides how a party's final balance is rounded.
type RoundingPolicy string

const (
	// FloorDifference floors totalWon, then floors the difference with the
	// two-decimal stake: won 0, staked 573.75 -> -574.
	FloorDifference RoundingPolicy = "floor-difference"

	// FloorOperands floors both totals before subtracting: won 0, staked
	// 573.75 -> -573.
	FloorOperands RoundingPolicy = "floor-operands"
)

// ParseRoundingPolicy validates a policy name. "" means FloorDifference.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch RoundingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FloorDifference:
		return FloorDifference, nil
	case FloorOperands:
		return FloorOperands, nil
	}
	return "", fmt.Errorf("unknown rounding policy %q", s)
}

// Balance returns the final balance for an already floored won total and a
// two-decimal staked total.
func (p RoundingPolicy) Balance(won, staked decimal.Decimal) decimal.Decimal {
	if p == FloorOperands {
		return domain.FloorInt(won).Sub(domain.FloorInt(staked))
	}
	return domain.FloorInt(domain.FloorInt(won).Sub(staked))
}

// ──────────────────────────────────────────────────────────────────────────────
// Report types
// ──────────────────────────────────────────────────────────────────────────────

// Filter narrows a balance report to one sign.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterNegative Filter = "negative"
	FilterPositive Filter = "positive"
)

// ParseFilter maps query values ("", "all", "negative"/"negativos",
// "positive"/"positivos") to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return FilterAll, nil
	case "negative", "negativos":
		return FilterNegative, nil
	case "positive", "positivos":
		return FilterPositive, nil
	}
	return "", domain.NewValidationError("filter", "unknown filter %q", s)
}

// Keep reports whether a balance passes the filter.
func (f Filter) Keep(balance int64) bool {
	switch f {
	case FilterNegative:
		return balance < 0
	case FilterPositive:
		return balance > 0
	}
	return true
}

// PartyBalance is one bettor, group or the house in a balance report.
type PartyBalance struct {
	Nome                 string        `json:"nome"`
	Integrantes          []string      `json:"integrantes,omitempty"`
	TotalApostado        domain.Amount `json:"totalApostado"`
	TotalPremiosVencidos int64         `json:"totalPremiosVencidos"`
	SaldoFinal           int64         `json:"saldoFinal"`
}

// ChampionshipBalance is the settlement of one championship.
type ChampionshipBalance struct {
	ChampionshipID   uuid.UUID      `json:"campeonatoId"`
	ChampionshipName string         `json:"campeonatoNome"`
	Bettors          []PartyBalance `json:"bettors"`
	Casa             *PartyBalance  `json:"casa,omitempty"`
}

// Filtered returns a copy keeping only parties that pass f.
func (cb ChampionshipBalance) Filtered(f Filter) ChampionshipBalance {
	out := cb
	out.Bettors = make([]PartyBalance, 0, len(cb.Bettors))
	for _, b := range cb.Bettors {
		if f.Keep(b.SaldoFinal) {
			out.Bettors = append(out.Bettors, b)
		}
	}
	if cb.Casa != nil && !f.Keep(cb.Casa.SaldoFinal) {
		out.Casa = nil
	}
	return out
}

// ChampionshipRef names a championship in a multi-championship report.
type ChampionshipRef struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

// MultiBalance is the consolidation of several championships. The house, when
// present in any of them, is the last entry of Bettors.
type MultiBalance struct {
	Campeonatos []ChampionshipRef `json:"campeonatos"`
	Bettors     []PartyBalance    `json:"bettors"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Parties
// ──────────────────────────────────────────────────────────────────────────────

// party accumulates one settlement unit: a group or an individual bettor.
type party struct {
	key     string
	name    string
	members []string
	grouped bool
	staked  decimal.Decimal
	won     decimal.Decimal
	gross   decimal.Decimal
	wagers  int
	rounds  map[string]struct{}
}

// parties folds every active wager into its party. Wagers on excluded pairs
// neither stake nor win; overridden rounds stake but never win.
func (l *Ledger) parties() []*party {
	byKey := make(map[string]*party)
	var order []*party

	for _, w := range l.active {
		name := l.BettorName(w.BettorID)
		key, display, members, grouped := "b:"+w.BettorID.String(), name, []string(nil), false
		if gid, ok := l.groups.GroupOf(name); ok {
			key, display, members, grouped = "g:"+gid, l.groups.DisplayName(gid), l.groups.Members(gid), true
		}

		p := byKey[key]
		if p == nil {
			p = &party{key: key, name: display, members: members, grouped: grouped, rounds: make(map[string]struct{})}
			byKey[key] = p
			order = append(order, p)
		}

		if l.exclusions.IsExcluded(w) {
			continue
		}
		p.staked = p.staked.Add(w.StakeShare)
		p.gross = p.gross.Add(domain.PercentOf(w.PrizeAfterWithdrawal, w.PrizeSharePercent))
		p.wagers++
		p.rounds[strings.TrimSpace(w.RoundName)] = struct{}{}
		if l.Qualifies(w) {
			p.won = p.won.Add(l.Payable(w))
		}
	}
	return order
}

// houseTotal sums the house round stakes. ok is false when there are none or
// the sum is not positive.
func (l *Ledger) houseTotal() (decimal.Decimal, bool) {
	if len(l.snap.HouseStakes) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, h := range l.snap.HouseStakes {
		sum = sum.Add(h.Amount)
	}
	return sum, sum.IsPositive()
}

// ──────────────────────────────────────────────────────────────────────────────
// Consolidation
// ──────────────────────────────────────────────────────────────────────────────

// Consolidate settles the championship: per party
//
//	totalApostado        = Σ stakeShare (non-excluded), truncated to 2 places
//	totalPremiosVencidos = floor(Σ payable)
//	saldoFinal           = policy.Balance(totalPremiosVencidos, totalApostado)
//
// Parties are sorted by display name. The house is reported separately when
// it staked a positive total.
func (l *Ledger) Consolidate(policy RoundingPolicy) ChampionshipBalance {
	out := ChampionshipBalance{
		ChampionshipID:   l.snap.Championship.ID,
		ChampionshipName: l.snap.Championship.Name,
		Bettors:          []PartyBalance{},
	}
	for _, p := range l.parties() {
		out.Bettors = append(out.Bettors, newPartyBalance(p.name, p.members, p.staked, p.won, policy))
	}
	sort.SliceStable(out.Bettors, func(i, j int) bool {
		return lessName(out.Bettors[i].Nome, out.Bettors[j].Nome)
	})

	if sum, ok := l.houseTotal(); ok {
		casa := newPartyBalance(HouseName, nil, sum, decimal.Zero, policy)
		out.Casa = &casa
	}
	return out
}

func newPartyBalance(name string, members []string, staked, won decimal.Decimal, policy RoundingPolicy) PartyBalance {
	staked = domain.Truncate2(staked)
	won = domain.FloorInt(won)
	return PartyBalance{
		Nome:                 name,
		Integrantes:          members,
		TotalApostado:        domain.Amount(staked),
		TotalPremiosVencidos: won.IntPart(),
		SaldoFinal:           policy.Balance(won, staked).IntPart(),
	}
}

// Merge sums single-championship results by display name. Staked totals are
// added, won totals are added and re-floored, and the balance is recomputed
// from the sums. Championships are merged in the given order; each contributes
// independently, so grouping in one does not carry over to another.
func Merge(results []ChampionshipBalance, policy RoundingPolicy) MultiBalance {
	type acc struct {
		name    string
		members map[string]struct{}
		staked  decimal.Decimal
		won     decimal.Decimal
	}

	out := MultiBalance{Campeonatos: make([]ChampionshipRef, 0, len(results))}
	byName := make(map[string]*acc)
	var house *acc

	add := func(pb PartyBalance) *acc {
		a := byName[pb.Nome]
		if a == nil {
			a = &acc{name: pb.Nome, members: make(map[string]struct{})}
			byName[pb.Nome] = a
		}
		for _, m := range pb.Integrantes {
			a.members[m] = struct{}{}
		}
		a.staked = a.staked.Add(pb.TotalApostado.Decimal())
		a.won = a.won.Add(decimal.NewFromInt(pb.TotalPremiosVencidos))
		return a
	}

	for _, r := range results {
		out.Campeonatos = append(out.Campeonatos, ChampionshipRef{ID: r.ChampionshipID, Nome: r.ChampionshipName})
		for _, b := range r.Bettors {
			add(b)
		}
		if r.Casa != nil {
			if house == nil {
				house = &acc{name: HouseName, members: map[string]struct{}{}}
			}
			house.staked = house.staked.Add(r.Casa.TotalApostado.Decimal())
		}
	}

	out.Bettors = make([]PartyBalance, 0, len(byName)+1)
	for _, a := range byName {
		var members []string
		if len(a.members) > 0 {
			members = sortedKeys(a.members)
		}
		out.Bettors = append(out.Bettors, newPartyBalance(a.name, members, a.staked, a.won, policy))
	}
	sort.SliceStable(out.Bettors, func(i, j int) bool {
		return lessName(out.Bettors[i].Nome, out.Bettors[j].Nome)
	})
	if house != nil {
		out.Bettors = append(out.Bettors, newPartyBalance(HouseName, nil, house.staked, decimal.Zero, policy))
	}
	return out
}

// Filtered returns a copy keeping only parties that pass f.
func (mb MultiBalance) Filtered(f Filter) MultiBalance {
	out := mb
	out.Bettors = make([]PartyBalance, 0, len(mb.Bettors))
	for _, b := range mb.Bettors {
		if f.Keep(b.SaldoFinal) {
			out.Bettors = append(out.Bettors, b)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Party summary
// ──────────────────────────────────────────────────────────────────────────────

// PartySummary describes what a party played in the championship.
type PartySummary struct {
	Tipo              string        `json:"tipo"`
	Nome              string        `json:"nome"`
	Integrantes       []string      `json:"integrantes,omitempty"`
	QuantidadeApostas int           `json:"quantidadeApostas"`
	TotalApostado     domain.Amount `json:"totalApostado"`
	TotalPremio       domain.Amount `json:"totalPremio"`
	Rodadas           []string      `json:"rodadas"`
}

// PartySummaries lists every party with its wager count, staked total, gross
// prize share and the rounds it played, sorted by name.
func (l *Ledger) PartySummaries() []PartySummary {
	ps := l.parties()
	out := make([]PartySummary, 0, len(ps))
	for _, p := range ps {
		tipo := "individual"
		if p.grouped {
			tipo = "grupo"
		}
		out = append(out, PartySummary{
			Tipo:              tipo,
			Nome:              p.name,
			Integrantes:       p.members,
			QuantidadeApostas: p.wagers,
			TotalApostado:     domain.NewAmount(p.staked),
			TotalPremio:       domain.NewAmount(p.gross),
			Rodadas:           sortedKeys(p.rounds),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return lessName(out[i].Nome, out[j].Nome) })
	return out
}
