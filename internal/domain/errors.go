package domain

import (
	"errors"
	"fmt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors (compare with errors.Is)
// ──────────────────────────────────────────────────────────────────────────────

// Championship / roster errors
var (
	// ErrChampionshipNotFound is returned when no championship matches the given id.
	ErrChampionshipNotFound = errors.New("championship not found")

	// ErrChampionshipExists is returned when a championship name is already taken.
	ErrChampionshipExists = errors.New("championship name already exists")

	// ErrRoundTypeNotFound is returned when no round type matches the given id.
	ErrRoundTypeNotFound = errors.New("round type not found")

	// ErrRoundTypeExists is returned when a round type name is already taken.
	ErrRoundTypeExists = errors.New("round type name already exists")

	// ErrRoundTypeInUse is returned when deleting a round type still referenced
	// by pairs or wagers.
	ErrRoundTypeInUse = errors.New("round type is in use")

	// ErrPairNotFound is returned when a pair number does not exist in the
	// championship and round type.
	ErrPairNotFound = errors.New("pair not found")

	// ErrPairExists is returned when a pair number is registered twice for the
	// same championship and round type.
	ErrPairExists = errors.New("pair number already exists")

	// ErrContestantNotFound is returned when a contestant id does not belong to
	// the championship it is referenced from.
	ErrContestantNotFound = errors.New("contestant not found in championship")

	// ErrBettorNotFound is returned when no bettor matches the given name or id.
	ErrBettorNotFound = errors.New("bettor not found")
)

// Settlement rule errors
var (
	// ErrExclusionNotFound is returned when an excluded pair id does not exist.
	ErrExclusionNotFound = errors.New("excluded pair not found")

	// ErrOverrideNotFound is returned when no round override exists for the round.
	ErrOverrideNotFound = errors.New("round winner override not found")

	// ErrGroupNotFound is returned when a dissolve selector matches no group row.
	ErrGroupNotFound = errors.New("combined bettor group not found")

	// ErrHouseStakeNotFound is returned when a house round stake id does not exist.
	ErrHouseStakeNotFound = errors.New("house round stake not found")

	// ErrPossibleWinnerNotFound is returned when the contestant is not on the
	// shortlist of the championship and round type.
	ErrPossibleWinnerNotFound = errors.New("contestant is not a possible winner for this round type")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned when operator credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTokenInvalid is returned when a token cannot be parsed or its signature
	// does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Typed errors
// ──────────────────────────────────────────────────────────────────────────────

// ValidationError reports input that is well formed but does not resolve:
// percentages that cannot sum to 100, a name claimed by two groups, a missing
// selector. Nothing is mutated when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ParseError reports a malformed wager-slip batch. Line and Raw point at the
// offending slip line (Line is 0 for the batch header).
type ParseError struct {
	Line    int
	Raw     string
	Message string
}

func (e *ParseError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Message, e.Raw)
}

// NewParseError builds a ParseError for the given line.
func NewParseError(line int, raw, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Raw: raw, Message: fmt.Sprintf(format, args...)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrChampionshipNotFound,
	ErrRoundTypeNotFound,
	ErrPairNotFound,
	ErrContestantNotFound,
	ErrBettorNotFound,
	ErrExclusionNotFound,
	ErrOverrideNotFound,
	ErrGroupNotFound,
	ErrHouseStakeNotFound,
	ErrPossibleWinnerNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for duplicate-name errors.
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrChampionshipExists,
		ErrRoundTypeExists,
		ErrRoundTypeInUse,
		ErrPairExists,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsParse reports whether err wraps a *ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsAuthError returns true for authentication errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
