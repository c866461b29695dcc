package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Championship & roster
// ──────────────────────────────────────────────────────────────────────────────

// Championship is a betting pool spanning many rounds. It owns every other
// entity transitively; deleting it cascades.
type Championship struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RoundType is a named category of rounds ("bracket", "individual", "final").
type RoundType struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsFinal reports whether the round type is a final. Finals are left out of
// the flat possible-winner report.
func (rt RoundType) IsFinal() bool {
	return strings.Contains(strings.ToLower(rt.Name), "final")
}

// Pair is a numbered match-up of contestants inside a championship and round type.
type Pair struct {
	ID             uuid.UUID    `json:"id"              db:"id"`
	ChampionshipID uuid.UUID    `json:"championship_id" db:"championship_id"`
	RoundTypeID    uuid.UUID    `json:"round_type_id"   db:"round_type_id"`
	Number         string       `json:"number"          db:"number"`
	CreatedAt      time.Time    `json:"created_at"      db:"created_at"`
	Contestants    []Contestant `json:"contestants"     db:"-"`
}

// HasContestantNamed reports whether any contestant of the pair matches one of
// the normalized names in set.
func (p *Pair) HasContestantNamed(set map[string]struct{}) bool {
	for _, c := range p.Contestants {
		if _, ok := set[NormalizeName(c.Name)]; ok {
			return true
		}
	}
	return false
}

// Contestant is one named entry within a pair.
type Contestant struct {
	ID       uuid.UUID `json:"id"       db:"id"`
	PairID   uuid.UUID `json:"pair_id"  db:"pair_id"`
	Name     string    `json:"name"     db:"name"`
	Label    *string   `json:"label"    db:"label"`
	Position int       `json:"position" db:"position"`
}

// ContestantInfo is a contestant joined with the pair that holds it.
type ContestantInfo struct {
	Contestant
	ChampionshipID uuid.UUID `json:"championship_id" db:"championship_id"`
	RoundTypeID    uuid.UUID `json:"round_type_id"   db:"round_type_id"`
	PairNumber     string    `json:"pair_number"     db:"pair_number"`
}

// Bettor is a global bettor identity. Names are unique as stored and matched
// case-insensitively.
type Bettor struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeletionSummary reports how many rows each table lost in a cascade delete.
type DeletionSummary struct {
	Championship    string `json:"championship"`
	Wagers          int64  `json:"wagers"`
	ExcludedPairs   int64  `json:"excluded_pairs"`
	Winners         int64  `json:"winners"`
	RoundOverrides  int64  `json:"round_overrides"`
	GroupMembers    int64  `json:"group_members"`
	HouseStakes     int64  `json:"house_stakes"`
	PossibleWinners int64  `json:"possible_winners"`
	Contestants     int64  `json:"contestants"`
	Pairs           int64  `json:"pairs"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Name helpers
// ──────────────────────────────────────────────────────────────────────────────

// NormalizeName trims, collapses inner whitespace and lowercases s. Winner,
// contestant, bettor and round names are compared through it.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// PadPairNumber trims n and left-pads it with zeros to two characters ("1" -> "01").
func PadPairNumber(n string) string {
	n = strings.TrimSpace(n)
	for len(n) < 2 {
		n = "0" + n
	}
	return n
}
