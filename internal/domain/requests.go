package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backoffice request bodies
// ──────────────────────────────────────────────────────────────────────────────

// NameRequest creates or renames a championship or round type.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreatePairRequest registers a pair and its ordered contestants.
type CreatePairRequest struct {
	RoundTypeID uuid.UUID         `json:"round_type_id" binding:"required"`
	Number      string            `json:"number"        binding:"required"`
	Contestants []ContestantInput `json:"contestants"   binding:"required,min=1,dive"`
}

// ContestantInput is one contestant of a CreatePairRequest.
type ContestantInput struct {
	Name  string  `json:"name" binding:"required"`
	Label *string `json:"label"`
}

// ExclusionRequest flags a pair number of a round type as excluded.
type ExclusionRequest struct {
	RoundTypeID uuid.UUID `json:"round_type_id" binding:"required"`
	PairNumber  string    `json:"pair_number"   binding:"required"`
	RawText     string    `json:"raw_text"`
}

// WinnersRequest replaces the declared winners.
type WinnersRequest struct {
	ContestantIDs []uuid.UUID `json:"contestant_ids"`
}

// WinnerRequest declares one more winner.
type WinnerRequest struct {
	ContestantID uuid.UUID `json:"contestant_id" binding:"required"`
}

// OverrideRequest removes a round from general winner accounting.
type OverrideRequest struct {
	RoundName    string     `json:"round_name"    binding:"required"`
	ContestantID *uuid.UUID `json:"contestant_id"`
}

// PossibleWinnersRequest replaces the shortlist of a round type.
type PossibleWinnersRequest struct {
	RoundTypeID   uuid.UUID   `json:"round_type_id"  binding:"required"`
	ContestantIDs []uuid.UUID `json:"contestant_ids" binding:"required,min=1"`
}

// MarkWinnerRequest flags one shortlisted contestant as the round type winner.
type MarkWinnerRequest struct {
	RoundTypeID  uuid.UUID `json:"round_type_id" binding:"required"`
	ContestantID uuid.UUID `json:"contestant_id" binding:"required"`
}

// HouseStakeRequest records the operator's stake on a round.
type HouseStakeRequest struct {
	RoundName string          `json:"round_name" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}
