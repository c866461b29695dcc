package settlement

import (
	"sort"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WinnerIndex holds the normalized winner names and overridden round names of
// a championship. Matching is by name, so two contestants in different pairs
// sharing a name both count as winners.
type WinnerIndex struct {
	names     map[string]struct{}
	overrides map[string]struct{}
}

// NewWinnerIndex normalizes winner contestant names and override round names.
func NewWinnerIndex(winners []domain.Winner, overrides []domain.RoundWinnerOverride) *WinnerIndex {
	wi := &WinnerIndex{
		names:     make(map[string]struct{}, len(winners)),
		overrides: make(map[string]struct{}, len(overrides)),
	}
	for _, w := range winners {
		if n := domain.NormalizeName(w.ContestantName); n != "" {
			wi.names[n] = struct{}{}
		}
	}
	for _, o := range overrides {
		wi.overrides[domain.NormalizeName(o.RoundName)] = struct{}{}
	}
	return wi
}

// HasWinners reports whether any winner is declared.
func (wi *WinnerIndex) HasWinners() bool { return len(wi.names) > 0 }

// MatchesPair reports whether the pair contains a contestant named like a winner.
func (wi *WinnerIndex) MatchesPair(p *domain.Pair) bool {
	return p.HasContestantNamed(wi.names)
}

// IsOverridden reports whether the round is excluded from general winner accounting.
func (wi *WinnerIndex) IsOverridden(roundName string) bool {
	_, ok := wi.overrides[domain.NormalizeName(roundName)]
	return ok
}

// ──────────────────────────────────────────────────────────────────────────────
// Winner report
// ──────────────────────────────────────────────────────────────────────────────

// BettorPrize is a bettor and what a contestant pays them.
type BettorPrize struct {
	Nome  string        `json:"nome"`
	Valor domain.Amount `json:"valorPremio"`
}

// WinnerPayout lists the bettors paid by one declared winner.
type WinnerPayout struct {
	WinnerID     uuid.UUID     `json:"id"`
	ContestantID uuid.UUID     `json:"cavaloId"`
	Nome         string        `json:"cavaloVencedor"`
	Apostadores  []BettorPrize `json:"apostadores"`
}

// WinnerReport lists, per declared winner, the bettors whose qualifying wagers
// sit on a pair holding a contestant with the winner's name. Excluded pairs and
// overridden rounds are left out. Prizes are truncated to two places and
// bettors sorted by name.
func (l *Ledger) WinnerReport() []WinnerPayout {
	out := make([]WinnerPayout, 0, len(l.snap.Winners))
	for _, win := range l.snap.Winners {
		target := map[string]struct{}{domain.NormalizeName(win.ContestantName): {}}
		sums := make(map[string]decimal.Decimal)

		for _, w := range l.active {
			if l.exclusions.IsExcluded(w) || l.winners.IsOverridden(w.RoundName) {
				continue
			}
			p := l.pairs[w.PairID]
			if p == nil || !p.HasContestantNamed(target) {
				continue
			}
			name := l.BettorName(w.BettorID)
			sums[name] = sums[name].Add(l.Payable(w))
		}

		out = append(out, WinnerPayout{
			WinnerID:     win.ID,
			ContestantID: win.ContestantID,
			Nome:         win.ContestantName,
			Apostadores:  sortedPrizes(sums),
		})
	}
	return out
}

func sortedPrizes(sums map[string]decimal.Decimal) []BettorPrize {
	out := make([]BettorPrize, 0, len(sums))
	for name, v := range sums {
		out = append(out, BettorPrize{Nome: name, Valor: domain.NewAmount(v)})
	}
	sort.Slice(out, func(i, j int) bool { return lessName(out[i].Nome, out[j].Nome) })
	return out
}

// lessName orders names case-insensitively, falling back to byte order.
func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// ──────────────────────────────────────────────────────────────────────────────
// Possible winners with bettors
// ──────────────────────────────────────────────────────────────────────────────

// ContestantBettors is one shortlisted contestant with the bettors holding
// wagers on its pair and what each would be paid.
type ContestantBettors struct {
	ContestantID  uuid.UUID     `json:"cavaloId"`
	Nome          string        `json:"nome"`
	PairNumber    string        `json:"numeroPareo"`
	RoundTypeID   uuid.UUID     `json:"tipoRodadaId"`
	RoundTypeName string        `json:"tipoRodada"`
	IsWinner      bool          `json:"isWinner"`
	Total         domain.Amount `json:"totalPremio"`
	Apostadores   []BettorPrize `json:"apostadores"`
}

// RoundTypeBreakdown groups shortlisted contestants by round type.
type RoundTypeBreakdown struct {
	RoundTypeID   uuid.UUID           `json:"tipoRodadaId"`
	RoundTypeName string              `json:"tipoRodada"`
	Contestants   []ContestantBettors `json:"cavalos"`
}

// PossibleWinnersReport is the response of the possible-winner breakdown.
// Exactly one of ByRoundType and Contestants is set.
type PossibleWinnersReport struct {
	ChampionshipID uuid.UUID            `json:"campeonatoId"`
	ByRoundType    []RoundTypeBreakdown `json:"tiposRodada,omitempty"`
	Contestants    []ContestantBettors  `json:"cavalos,omitempty"`
}

// PossibleWinners builds the per-contestant bettor/prize breakdown of the
// shortlist. grouped=true returns one block per round type; otherwise the
// contestants are flattened and round types whose name contains "final" are
// dropped.
func (l *Ledger) PossibleWinners(grouped bool) PossibleWinnersReport {
	report := PossibleWinnersReport{ChampionshipID: l.snap.Championship.ID}

	byType := make(map[uuid.UUID][]ContestantBettors)
	var typeOrder []uuid.UUID
	for _, pw := range l.snap.PossibleWinners {
		ref, ok := l.contestants[pw.ContestantID]
		if !ok {
			continue
		}
		cb := l.contestantBettors(ref, pw)
		if _, seen := byType[pw.RoundTypeID]; !seen {
			typeOrder = append(typeOrder, pw.RoundTypeID)
		}
		byType[pw.RoundTypeID] = append(byType[pw.RoundTypeID], cb)
	}

	sort.SliceStable(typeOrder, func(i, j int) bool {
		return lessName(l.RoundTypeName(typeOrder[i]), l.RoundTypeName(typeOrder[j]))
	})

	for _, id := range typeOrder {
		cs := byType[id]
		sort.SliceStable(cs, func(i, j int) bool { return lessName(cs[i].Nome, cs[j].Nome) })
		if grouped {
			report.ByRoundType = append(report.ByRoundType, RoundTypeBreakdown{
				RoundTypeID:   id,
				RoundTypeName: l.RoundTypeName(id),
				Contestants:   cs,
			})
			continue
		}
		if l.roundTypes[id].IsFinal() {
			continue
		}
		report.Contestants = append(report.Contestants, cs...)
	}
	return report
}

func (l *Ledger) contestantBettors(ref contestantRef, pw domain.PossibleWinner) ContestantBettors {
	sums := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, w := range l.active {
		if w.PairID != ref.pair.ID || w.RoundTypeID != pw.RoundTypeID {
			continue
		}
		if l.exclusions.IsExcluded(w) {
			continue
		}
		v := l.Payable(w)
		name := l.BettorName(w.BettorID)
		sums[name] = sums[name].Add(v)
		total = total.Add(v)
	}
	return ContestantBettors{
		ContestantID:  ref.contestant.ID,
		Nome:          ref.contestant.Name,
		PairNumber:    ref.pair.Number,
		RoundTypeID:   pw.RoundTypeID,
		RoundTypeName: l.RoundTypeName(pw.RoundTypeID),
		IsWinner:      pw.IsWinner,
		Total:         domain.NewAmount(total),
		Apostadores:   sortedPrizes(sums),
	}
}
