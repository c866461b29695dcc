package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Settlement rules read at settlement time. None of them rewrite wager rows.
// ──────────────────────────────────────────────────────────────────────────────

// ExcludedPair voids a pair number of a round type after the fact.
type ExcludedPair struct {
	ID             uuid.UUID `json:"id"              db:"id"`
	ChampionshipID uuid.UUID `json:"championship_id" db:"championship_id"`
	RoundTypeID    uuid.UUID `json:"round_type_id"   db:"round_type_id"`
	PairNumber     string    `json:"pair_number"     db:"pair_number"`
	RawText        string    `json:"raw_text"        db:"raw_text"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}

// Winner declares a contestant championship-wide winner. The contestant is
// resolved by id at declaration and matched by name at settlement.
type Winner struct {
	ID             uuid.UUID `json:"id"              db:"id"`
	ChampionshipID uuid.UUID `json:"championship_id" db:"championship_id"`
	ContestantID   uuid.UUID `json:"contestant_id"   db:"contestant_id"`
	ContestantName string    `json:"contestant_name" db:"contestant_name"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}

// RoundWinnerOverride removes a round from general winner accounting. The
// optional contestant is informational and never pays.
type RoundWinnerOverride struct {
	ID             uuid.UUID  `json:"id"              db:"id"`
	ChampionshipID uuid.UUID  `json:"championship_id" db:"championship_id"`
	RoundName      string     `json:"round_name"      db:"round_name"`
	ContestantID   *uuid.UUID `json:"contestant_id"   db:"contestant_id"`
	CreatedAt      time.Time  `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"      db:"updated_at"`
}

// GroupMember is one row of a combined-bettor group. BettorName keeps the
// spelling it was defined with; a name, compared through NormalizeName,
// appears in at most one group per championship.
type GroupMember struct {
	ID              uuid.UUID `json:"id"               db:"id"`
	ChampionshipID  uuid.UUID `json:"championship_id"  db:"championship_id"`
	GroupIdentifier string    `json:"group_identifier" db:"group_identifier"`
	BettorName      string    `json:"bettor_name"      db:"bettor_name"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
}

// Group is the read model of a combined-bettor group.
type Group struct {
	GroupIdentifier string   `json:"groupIdentifier"`
	Members         []string `json:"members"`
}

// HouseRoundStake is the operator's fixed stake for one round.
type HouseRoundStake struct {
	ID             uuid.UUID       `json:"id"              db:"id"`
	ChampionshipID uuid.UUID       `json:"championship_id" db:"championship_id"`
	RoundName      string          `json:"round_name"      db:"round_name"`
	Amount         decimal.Decimal `json:"amount"          db:"amount"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"`
}

// PossibleWinner shortlists a contestant for a championship and round type.
// At most one row per (championship, round type) has IsWinner set.
type PossibleWinner struct {
	ID             uuid.UUID `json:"id"              db:"id"`
	ChampionshipID uuid.UUID `json:"championship_id" db:"championship_id"`
	RoundTypeID    uuid.UUID `json:"round_type_id"   db:"round_type_id"`
	ContestantID   uuid.UUID `json:"contestant_id"   db:"contestant_id"`
	IsWinner       bool      `json:"is_winner"       db:"is_winner"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}
