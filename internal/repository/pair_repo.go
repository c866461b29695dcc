package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PairRepository handles pairs and their contestants.
type PairRepository struct {
	db *sqlx.DB
}

// NewPairRepository creates a new PairRepository.
func NewPairRepository(db *sqlx.DB) *PairRepository {
	return &PairRepository{db: db}
}

// CreateWithContestants inserts the pair and its ordered contestants inside
// tx. The pair number is stored padded.
func (r *PairRepository) CreateWithContestants(ctx context.Context, tx *sqlx.Tx, p *domain.Pair) error {
	p.Number = domain.PadPairNumber(p.Number)
	err := tx.GetContext(ctx, p, `
		INSERT INTO pairs (id, championship_id, round_type_id, number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, championship_id, round_type_id, number, created_at`,
		p.ID, p.ChampionshipID, p.RoundTypeID, p.Number)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPairExists
		}
		return fmt.Errorf("pair_repo.CreateWithContestants: %w", err)
	}

	for i := range p.Contestants {
		c := &p.Contestants[i]
		c.PairID = p.ID
		c.Position = i
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO contestants (id, pair_id, name, label, position)
			VALUES (:id, :pair_id, :name, :label, :position)`, c)
		if err != nil {
			return fmt.Errorf("pair_repo.CreateWithContestants contestant: %w", err)
		}
	}
	return nil
}

// ListByChampionship returns the pairs of a championship with contestants,
// ordered by round type and number.
func (r *PairRepository) ListByChampionship(ctx context.Context, championshipID uuid.UUID) ([]domain.Pair, error) {
	var pairs []domain.Pair
	err := r.db.SelectContext(ctx, &pairs, `
		SELECT id, championship_id, round_type_id, number, created_at
		FROM pairs WHERE championship_id = $1
		ORDER BY round_type_id, number`, championshipID)
	if err != nil {
		return nil, fmt.Errorf("pair_repo.ListByChampionship: %w", err)
	}

	var cs []domain.Contestant
	err = r.db.SelectContext(ctx, &cs, `
		SELECT c.id, c.pair_id, c.name, c.label, c.position
		FROM contestants c JOIN pairs p ON p.id = c.pair_id
		WHERE p.championship_id = $1
		ORDER BY c.pair_id, c.position`, championshipID)
	if err != nil {
		return nil, fmt.Errorf("pair_repo.ListByChampionship contestants: %w", err)
	}
	attachContestants(pairs, cs)
	return pairs, nil
}

// NumbersByRoundType maps padded pair numbers to pair ids for one round type.
func (r *PairRepository) NumbersByRoundType(ctx context.Context, tx *sqlx.Tx, championshipID, roundTypeID uuid.UUID) (map[string]uuid.UUID, error) {
	var rows []struct {
		ID     uuid.UUID `db:"id"`
		Number string    `db:"number"`
	}
	err := tx.SelectContext(ctx, &rows,
		`SELECT id, number FROM pairs WHERE championship_id = $1 AND round_type_id = $2`,
		championshipID, roundTypeID)
	if err != nil {
		return nil, fmt.Errorf("pair_repo.NumbersByRoundType: %w", err)
	}
	out := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		out[domain.PadPairNumber(row.Number)] = row.ID
	}
	return out, nil
}

// FindByNumber fetches one pair by its number within a round type.
func (r *PairRepository) FindByNumber(ctx context.Context, championshipID, roundTypeID uuid.UUID, number string) (*domain.Pair, error) {
	var p domain.Pair
	err := r.db.GetContext(ctx, &p, `
		SELECT id, championship_id, round_type_id, number, created_at
		FROM pairs WHERE championship_id = $1 AND round_type_id = $2 AND number = $3`,
		championshipID, roundTypeID, domain.PadPairNumber(number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPairNotFound
		}
		return nil, fmt.Errorf("pair_repo.FindByNumber: %w", err)
	}
	err = r.db.SelectContext(ctx, &p.Contestants,
		`SELECT id, pair_id, name, label, position FROM contestants WHERE pair_id = $1 ORDER BY position`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("pair_repo.FindByNumber contestants: %w", err)
	}
	return &p, nil
}

const contestantInfoSelect = `
	SELECT c.id, c.pair_id, c.name, c.label, c.position,
	       p.championship_id, p.round_type_id, p.number AS pair_number
	FROM contestants c JOIN pairs p ON p.id = c.pair_id`

// GetContestant fetches a contestant with its pair coordinates.
func (r *PairRepository) GetContestant(ctx context.Context, id uuid.UUID) (*domain.ContestantInfo, error) {
	var ci domain.ContestantInfo
	err := r.db.GetContext(ctx, &ci, contestantInfoSelect+` WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrContestantNotFound
		}
		return nil, fmt.Errorf("pair_repo.GetContestant: %w", err)
	}
	return &ci, nil
}

// ListContestantsByChampionship returns every contestant of the championship.
func (r *PairRepository) ListContestantsByChampionship(ctx context.Context, championshipID uuid.UUID) ([]domain.ContestantInfo, error) {
	var out []domain.ContestantInfo
	err := r.db.SelectContext(ctx, &out,
		contestantInfoSelect+` WHERE p.championship_id = $1 ORDER BY p.number, c.position`, championshipID)
	if err != nil {
		return nil, fmt.Errorf("pair_repo.ListContestantsByChampionship: %w", err)
	}
	return out, nil
}

// attachContestants distributes contestants onto their pairs, keeping order.
func attachContestants(pairs []domain.Pair, cs []domain.Contestant) {
	idx := make(map[uuid.UUID]int, len(pairs))
	for i := range pairs {
		idx[pairs[i].ID] = i
	}
	for _, c := range cs {
		if i, ok := idx[c.PairID]; ok {
			pairs[i].Contestants = append(pairs[i].Contestants, c)
		}
	}
}
