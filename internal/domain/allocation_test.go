package domain_test

import (
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/shopspring/decimal"
)

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestResolvePercents_RemainderSplit checks "A 60% / B / C" -> 60 / 20 / 20.
func TestResolvePercents_RemainderSplit(t *testing.T) {
	got, err := domain.ResolvePercents([]domain.SlipEntry{
		{Name: "A", Percent: pct("60")},
		{Name: "B"},
		{Name: "C"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"60", "20", "20"}
	for i, w := range want {
		if !got[i].Equal(dec(w)) {
			t.Errorf("percent[%d] = %s, want %s", i, got[i], w)
		}
	}
}

func TestResolvePercents_SingleOpenEntryTakesRemainder(t *testing.T) {
	got, err := domain.ResolvePercents([]domain.SlipEntry{
		{Name: "Ana", Percent: pct("60")},
		{Name: "Bruno"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[1].Equal(dec("40")) {
		t.Errorf("Bruno = %s, want 40", got[1])
	}
}

func TestResolvePercents_LoneBettorGetsHundred(t *testing.T) {
	got, err := domain.ResolvePercents([]domain.SlipEntry{{Name: "Ana"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].Equal(dec("100")) {
		t.Errorf("lone bettor = %s, want 100", got[0])
	}
}

// TestResolvePercents_SumsToHundred walks slips of 1..9 open co-bettors plus
// a few explicit mixes and checks every result sums to 100 within 0.01.
func TestResolvePercents_SumsToHundred(t *testing.T) {
	for n := 1; n <= 9; n++ {
		entries := make([]domain.SlipEntry, n)
		for i := range entries {
			entries[i] = domain.SlipEntry{Name: string(rune('A' + i))}
		}
		assertHundred(t, entries)
	}
	assertHundred(t, []domain.SlipEntry{{Name: "A", Percent: pct("33.33")}, {Name: "B"}, {Name: "C"}})
	assertHundred(t, []domain.SlipEntry{{Name: "A", Percent: pct("10")}, {Name: "B", Percent: pct("15.5")}, {Name: "C"}})
	assertHundred(t, []domain.SlipEntry{{Name: "A", Percent: pct("50")}, {Name: "B", Percent: pct("50")}})
}

func assertHundred(t *testing.T, entries []domain.SlipEntry) {
	t.Helper()
	got, err := domain.ResolvePercents(entries)
	if err != nil {
		t.Fatalf("%d entries: unexpected error: %v", len(entries), err)
	}
	sum := decimal.Zero
	for _, p := range got {
		sum = sum.Add(p)
	}
	if !domain.SumsToHundred(sum) {
		t.Errorf("%d entries: percentages sum to %s, want 100", len(entries), sum)
	}
}

func TestResolvePercents_Unresolvable(t *testing.T) {
	cases := map[string][]domain.SlipEntry{
		"explicit above 100":    {{Name: "A", Percent: pct("70")}, {Name: "B", Percent: pct("40")}},
		"explicit below 100":    {{Name: "A", Percent: pct("70")}, {Name: "B", Percent: pct("20")}},
		"nothing left to share": {{Name: "A", Percent: pct("100")}, {Name: "B"}},
		"no entries":            {},
	}
	for name, entries := range cases {
		_, err := domain.ResolvePercents(entries)
		if !domain.IsValidation(err) {
			t.Errorf("%s: err = %v, want ValidationError", name, err)
		}
	}
}

// TestAllocateSlip_Scenario mirrors the reference slip
// "01- 1000.00 Ana 60% / Bruno": Ana 600 at 60 %, Bruno 400 at 40 %.
func TestAllocateSlip_Scenario(t *testing.T) {
	allocs, err := domain.AllocateSlip(domain.Slip{
		PairNumber: "01",
		Stake:      dec("1000.00"),
		Entries: []domain.SlipEntry{
			{Name: "Ana", Percent: pct("60")},
			{Name: " Bruno "},
		},
		Line: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allocs) != 2 {
		t.Fatalf("got %d allocations, want 2", len(allocs))
	}

	ana, bruno := allocs[0], allocs[1]
	if !ana.StakeShare.Equal(dec("600")) || !ana.PrizeSharePercent.Equal(dec("60")) {
		t.Errorf("Ana = %s @ %s%%, want 600 @ 60%%", ana.StakeShare, ana.PrizeSharePercent)
	}
	if bruno.BettorName != "Bruno" {
		t.Errorf("bettor name = %q, want trimmed %q", bruno.BettorName, "Bruno")
	}
	if !bruno.StakeShare.Equal(dec("400")) || !bruno.PrizeSharePercent.Equal(dec("40")) {
		t.Errorf("Bruno = %s @ %s%%, want 400 @ 40%%", bruno.StakeShare, bruno.PrizeSharePercent)
	}
	if !bruno.StakeTotal.Equal(dec("1000")) {
		t.Errorf("stake total = %s, want 1000", bruno.StakeTotal)
	}
}

func TestAllocateSlip_TruncatesStakeShare(t *testing.T) {
	allocs, err := domain.AllocateSlip(domain.Slip{
		PairNumber: "02",
		Stake:      dec("100"),
		Entries:    []domain.SlipEntry{{Name: "A"}, {Name: "B"}, {Name: "C"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 33.33 %, 33.33 %, 33.34 % of 100
	want := []string{"33.33", "33.33", "33.34"}
	for i, w := range want {
		if !allocs[i].StakeShare.Equal(dec(w)) {
			t.Errorf("stake[%d] = %s, want %s", i, allocs[i].StakeShare, w)
		}
	}
}

func TestSlipBatchValidate(t *testing.T) {
	valid := func() domain.SlipBatch {
		return domain.SlipBatch{
			RoundName:         "R01",
			PrizePool:         pct("1000"),
			WithdrawalPercent: pct("10"),
			Slips: []domain.Slip{{
				PairNumber: "01", Stake: dec("1000"), Line: 2, Raw: "01- 1000.00 Ana",
				Entries: []domain.SlipEntry{{Name: "Ana"}},
			}},
		}
	}

	b := valid()
	if err := b.Validate(); err != nil {
		t.Fatalf("valid batch: unexpected error: %v", err)
	}
	if got := b.PrizeAfterWithdrawal(); !got.Equal(dec("900")) {
		t.Errorf("prize after withdrawal = %s, want 900", got)
	}

	mutations := map[string]func(*domain.SlipBatch){
		"empty round":          func(b *domain.SlipBatch) { b.RoundName = "  " },
		"missing total":        func(b *domain.SlipBatch) { b.PrizePool = nil },
		"negative total":       func(b *domain.SlipBatch) { b.PrizePool = pct("-1") },
		"missing withdrawal":   func(b *domain.SlipBatch) { b.WithdrawalPercent = nil },
		"withdrawal of 100":    func(b *domain.SlipBatch) { b.WithdrawalPercent = pct("100") },
		"empty pair number":    func(b *domain.SlipBatch) { b.Slips[0].PairNumber = "" },
		"empty bettor name":    func(b *domain.SlipBatch) { b.Slips[0].Entries[0].Name = " " },
		"percent out of range": func(b *domain.SlipBatch) { b.Slips[0].Entries[0].Percent = pct("120") },
		"negative stake":       func(b *domain.SlipBatch) { b.Slips[0].Stake = dec("-5") },
	}
	for name, mutate := range mutations {
		b := valid()
		mutate(&b)
		err := b.Validate()
		if !domain.IsParse(err) {
			t.Errorf("%s: err = %v, want ParseError", name, err)
		}
	}
}

func TestSlipBatchValidate_ReportsLine(t *testing.T) {
	b := domain.SlipBatch{
		RoundName:         "R01",
		PrizePool:         pct("10"),
		WithdrawalPercent: pct("0"),
		Slips:             []domain.Slip{{PairNumber: "07", Stake: dec("10"), Line: 12, Raw: "07- 10,00"}},
	}
	err := b.Validate()
	pe, ok := err.(*domain.ParseError)
	if !ok {
		t.Fatalf("err = %T, want *domain.ParseError", err)
	}
	if pe.Line != 12 || pe.Raw != "07- 10,00" {
		t.Errorf("parse error context = (%d, %q), want (12, %q)", pe.Line, pe.Raw, "07- 10,00")
	}
}
