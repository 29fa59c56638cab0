// Package planlimit enforces per-tenant monthly order quotas. It is the
// plan-limit collaborator order callers consult before creating an order;
// the orchestrator itself never checks quotas.
package planlimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

// DefaultWindowTTL keeps a monthly counter alive past its window so a
// late-arriving read still sees it.
const DefaultWindowTTL = 35 * 24 * time.Hour

type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	PlanUsageKey(tenantID, window string) string
}

// Checker counts order creations per tenant per calendar month.
type Checker struct {
	store counterStore
	ttl   time.Duration
	now   func() time.Time
}

// NewChecker builds a plan-limit checker on the provided counter store.
func NewChecker(store counterStore) (*Checker, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	return &Checker{store: store, ttl: DefaultWindowTTL, now: time.Now}, nil
}

// Allow consumes one unit of the tenant's monthly quota. A non-positive
// limit means unlimited and does not touch the counter.
func (c *Checker) Allow(ctx context.Context, tenantID uuid.UUID, limit int64) error {
	if limit <= 0 {
		return nil
	}
	if tenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	window := c.now().UTC().Format("200601")
	key := c.store.PlanUsageKey(tenantID.String(), window)
	count, err := c.store.IncrWithTTL(ctx, key, c.ttl)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "plan usage counter unavailable")
	}
	if count > limit {
		return pkgerrors.New(pkgerrors.CodeLimitExceeded,
			fmt.Sprintf("monthly order limit of %d reached", limit)).
			WithDetails(map[string]any{"used": count, "limit": limit})
	}
	return nil
}
