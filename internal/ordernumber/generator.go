// Package ordernumber mints tenant-scoped, human-readable order numbers.
// Sequencing uses a per-tenant, per-local-day counter row incremented inside
// the order-creating transaction, so concurrent creations cannot mint the
// same number.
package ordernumber

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

// Generate returns the next order number for the tenant: prefix, zero-padded
// daily sequence, then the tenant-local HHMM.
func Generate(ctx context.Context, tx *gorm.DB, tenant *models.Tenant) (string, error) {
	return generateAt(ctx, tx, tenant, time.Now())
}

func generateAt(ctx context.Context, tx *gorm.DB, tenant *models.Tenant, now time.Time) (string, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if tenant == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "tenant required")
	}

	local := now.In(tenantLocation(tenant.Timezone))
	day := local.Format("2006-01-02")

	var seq int
	err := tx.WithContext(ctx).Raw(`
INSERT INTO order_counters (tenant_id, day, counter, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (tenant_id, day)
DO UPDATE SET counter = order_counters.counter + 1, updated_at = ?
RETURNING counter`, tenant.ID, day, now, now).Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("incrementing order counter: %w", err)
	}

	prefix := tenant.OrderNumberPrefix
	if prefix == "" {
		prefix = "SO"
	}
	return fmt.Sprintf("%s%02d%s", prefix, seq, local.Format("1504")), nil
}

// tenantLocation resolves the IANA zone, falling back to UTC on unknown
// names so a misconfigured tenant can still order.
func tenantLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
