package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Wager
// ──────────────────────────────────────────────────────────────────────────────

// Wager is one bettor's share of a staked slip on a pair within a named round.
//
// Per slip, BetSharePercent of the co-bettors sums to 100 (within 0.01) and
// PrizeSharePercent likewise.
type Wager struct {
	ID                   uuid.UUID       `json:"id"                     db:"id"`
	ChampionshipID       uuid.UUID       `json:"championship_id"        db:"championship_id"`
	RoundTypeID          uuid.UUID       `json:"round_type_id"          db:"round_type_id"`
	RoundName            string          `json:"round_name"             db:"round_name"`
	PairID               uuid.UUID       `json:"pair_id"                db:"pair_id"`
	BettorID             uuid.UUID       `json:"bettor_id"              db:"bettor_id"`
	StakeShare           decimal.Decimal `json:"stake_share"            db:"stake_share"`
	StakeTotalOriginal   decimal.Decimal `json:"stake_total_original"   db:"stake_total_original"`
	BetSharePercent      decimal.Decimal `json:"bet_share_percent"      db:"bet_share_percent"`
	PrizeSharePercent    decimal.Decimal `json:"prize_share_percent"    db:"prize_share_percent"`
	PrizeAfterWithdrawal decimal.Decimal `json:"prize_after_withdrawal" db:"prize_after_withdrawal"`
	PrizePoolOriginal    decimal.Decimal `json:"prize_pool_original"    db:"prize_pool_original"`
	WithdrawalPercent    decimal.Decimal `json:"withdrawal_percent"     db:"withdrawal_percent"`
	CreatedAt            time.Time       `json:"created_at"             db:"created_at"`
}

// IsActive reports whether the wager takes part in settlement: it must carry
// a positive stake share and a positive prize after withdrawal.
func (w *Wager) IsActive() bool {
	return w.StakeShare.IsPositive() && w.PrizeAfterWithdrawal.IsPositive()
}

// WagerView is a wager joined with its pair number and bettor name, returned
// by round listings.
type WagerView struct {
	Wager
	PairNumber string `json:"pair_number" db:"pair_number"`
	BettorName string `json:"bettor_name" db:"bettor_name"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Tokenized slip batch (ingestion boundary)
// ──────────────────────────────────────────────────────────────────────────────

// SlipBatch is the tokenized form of one round's wager slips. A batch fully
// replaces the wagers stored for (championship, round type, RoundName).
type SlipBatch struct {
	RoundName         string           `json:"round_name"`
	PrizePool         *decimal.Decimal `json:"prize_pool"`
	WithdrawalPercent *decimal.Decimal `json:"withdrawal_percent"`
	Slips             []Slip           `json:"slips"`
}

// Slip is one tokenized slip line: a pair number, the whole stake and the
// co-bettors sharing it.
type Slip struct {
	PairNumber string          `json:"pair_number"`
	Stake      decimal.Decimal `json:"stake"`
	Entries    []SlipEntry     `json:"entries"`
	Line       int             `json:"line"`
	Raw        string          `json:"raw"`
}

// SlipEntry is one co-bettor on a slip. A nil Percent takes a share of the
// remainder left by the explicit percentages.
type SlipEntry struct {
	Name    string           `json:"name"`
	Percent *decimal.Decimal `json:"percent"`
}

// Validate checks the batch header and every slip for malformed values.
// Errors are *ParseError carrying the offending line.
func (b *SlipBatch) Validate() error {
	if strings.TrimSpace(b.RoundName) == "" {
		return NewParseError(0, "", "round name is missing")
	}
	if b.PrizePool == nil {
		return NewParseError(0, b.RoundName, "prize pool total is missing")
	}
	if b.PrizePool.IsNegative() {
		return NewParseError(0, b.RoundName, "prize pool total %s is negative", b.PrizePool)
	}
	if b.WithdrawalPercent == nil {
		return NewParseError(0, b.RoundName, "withdrawal percent is missing")
	}
	if b.WithdrawalPercent.IsNegative() || b.WithdrawalPercent.GreaterThanOrEqual(hundred) {
		return NewParseError(0, b.RoundName, "withdrawal percent %s must be in [0, 100)", b.WithdrawalPercent)
	}
	for _, s := range b.Slips {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Slip) validate() error {
	if strings.TrimSpace(s.PairNumber) == "" {
		return NewParseError(s.Line, s.Raw, "pair number is missing")
	}
	if s.Stake.IsNegative() {
		return NewParseError(s.Line, s.Raw, "stake %s is negative", s.Stake)
	}
	if len(s.Entries) == 0 {
		return NewParseError(s.Line, s.Raw, "slip has no bettors")
	}
	for _, e := range s.Entries {
		if strings.TrimSpace(e.Name) == "" {
			return NewParseError(s.Line, s.Raw, "bettor name is empty")
		}
		if e.Percent != nil && (!e.Percent.IsPositive() || e.Percent.GreaterThan(hundred)) {
			return NewParseError(s.Line, s.Raw, "percent %s for %q must be in (0, 100]", e.Percent, e.Name)
		}
	}
	return nil
}

// PrizeAfterWithdrawal is the batch prize pool net of the withdrawal cut.
func (b *SlipBatch) PrizeAfterWithdrawal() decimal.Decimal {
	return Truncate2(NetOfWithdrawal(*b.PrizePool, *b.WithdrawalPercent))
}
