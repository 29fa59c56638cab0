package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
)

// Repository reads promotional rules. The order subsystem never writes them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActive(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Discount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindActive returns the tenant's active discounts whose window contains now,
// in creation order. Open-ended bounds match any instant on that side. Tiers
// are loaded ascending by min_qty.
func (r *repository) FindActive(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	err := r.db.WithContext(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_qty ASC")
		}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("created_at ASC").
		Find(&discounts).Error
	if err != nil {
		return nil, err
	}
	return discounts, nil
}
