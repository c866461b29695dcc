package service

import (
	"context"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Invalidator drops the cached settlement results of a championship.
type Invalidator interface {
	Invalidate(ctx context.Context, championshipID uuid.UUID) error
}

// invalidate drops the championship's cached results after a mutation. A
// cache failure is logged, never returned: the write already committed.
func invalidate(ctx context.Context, c Invalidator, championshipID uuid.UUID, op string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, championshipID); err != nil {
		log.WithFields(log.Fields{
			"championship_id": championshipID,
			"op":              op,
		}).WithError(err).Warn("settlement cache invalidation failed")
	}
}

// requireName trims s and rejects it when empty.
func requireName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.NewValidationError(field, "must not be empty")
	}
	return s, nil
}
