package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Allocation is one co-bettor's portion of a slip.
type Allocation struct {
	BettorName        string
	Percent           decimal.Decimal
	StakeShare        decimal.Decimal
	StakeTotal        decimal.Decimal
	PrizeSharePercent decimal.Decimal
}

// ResolvePercents returns the share percent of every entry, in entry order.
//
// Entries with an explicit percent keep it. The others split the remainder
// 100 − Σexplicit equally, truncated to two places; the last of them absorbs
// the leftover cents so the slip sums to exactly 100. A lone entry without a
// percent takes the full remainder.
func ResolvePercents(entries []SlipEntry) ([]decimal.Decimal, error) {
	if len(entries) == 0 {
		return nil, NewValidationError("entries", "slip has no bettors")
	}

	explicit := decimal.Zero
	var open []int
	for i, e := range entries {
		if e.Percent == nil {
			open = append(open, i)
			continue
		}
		explicit = explicit.Add(*e.Percent)
	}

	if explicit.Sub(hundred).GreaterThan(PercentTolerance) {
		return nil, NewValidationError("percent", "explicit percentages sum to %s, above 100", explicit)
	}

	out := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		if e.Percent != nil {
			out[i] = *e.Percent
		}
	}

	if len(open) == 0 {
		if !SumsToHundred(explicit) {
			return nil, NewValidationError("percent", "percentages sum to %s, want 100", explicit)
		}
		return out, nil
	}

	remainder := hundred.Sub(explicit)
	if !remainder.IsPositive() {
		return nil, NewValidationError("percent", "no remainder left for %d bettor(s) without a percentage", len(open))
	}

	each := Truncate2(remainder.Div(decimal.NewFromInt(int64(len(open)))))
	given := decimal.Zero
	for _, idx := range open[:len(open)-1] {
		out[idx] = each
		given = given.Add(each)
	}
	out[open[len(open)-1]] = remainder.Sub(given)
	return out, nil
}

// AllocateSlip splits the slip's stake across its co-bettors.
// stakeShare = stake × percent/100 (truncated to two places); the prize share
// equals the bet share.
func AllocateSlip(s Slip) ([]Allocation, error) {
	percents, err := ResolvePercents(s.Entries)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok && s.Line > 0 {
			ve.Message += " on line " + strconv.Itoa(s.Line)
		}
		return nil, err
	}

	out := make([]Allocation, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = Allocation{
			BettorName:        strings.TrimSpace(e.Name),
			Percent:           percents[i],
			StakeShare:        Truncate2(PercentOf(s.Stake, percents[i])),
			StakeTotal:        s.Stake,
			PrizeSharePercent: percents[i],
		}
	}
	return out, nil
}
