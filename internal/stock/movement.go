package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

// MovementInput describes one physical stock change to commit.
type MovementInput struct {
	TenantID      uuid.UUID
	ProductID     uuid.UUID
	Type          enums.StockMovementType
	Quantity      int
	ReferenceType enums.StockReferenceType
	ReferenceID   *uuid.UUID
	Notes         *string
	CreatedBy     uuid.UUID
}

// CommitMovement adjusts stock_quantity and appends the audit row with the
// before/after snapshot taken under lock. The ledger records how stock got
// to its value; stock_quantity stays the source of truth.
func CommitMovement(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement quantity required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}

	delta, err := movementDelta(input.Type, input.Quantity)
	if err != nil {
		return nil, err
	}

	var product models.Product
	query := tx.WithContext(ctx)
	if supportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.
		Where("tenant_id = ? AND id = ?", input.TenantID, input.ProductID).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("locking product: %w", err)
	}

	before := product.StockQuantity
	after := before + delta
	if after < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("movement would drive stock of %s below zero", product.Name))
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("adjusting stock: %w", res.Error)
	}

	movement := &models.StockMovement{
		ID:             uuid.New(),
		TenantID:       input.TenantID,
		ProductID:      input.ProductID,
		Type:           input.Type,
		Quantity:       input.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  input.ReferenceType,
		ReferenceID:    input.ReferenceID,
		Notes:          input.Notes,
		CreatedBy:      input.CreatedBy,
	}
	if err := tx.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, fmt.Errorf("recording stock movement: %w", err)
	}
	return movement, nil
}

func movementDelta(movementType enums.StockMovementType, quantity int) (int, error) {
	switch movementType {
	case enums.StockMovementPurchaseIn, enums.StockMovementReturnIn:
		if quantity < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "inbound movement quantity must be positive")
		}
		return quantity, nil
	case enums.StockMovementSaleOut:
		if quantity < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "outbound movement quantity must be positive")
		}
		return -quantity, nil
	case enums.StockMovementAdjustment:
		// adjustments carry their own sign
		return quantity, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}
}
