package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/internal/discounts"
	"github.com/ixasales-prog/IxaSales-sub001/internal/planlimit"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

var _ PlanLimitChecker = (*planlimit.Checker)(nil)

type testTx struct {
	db *gorm.DB
}

func (t *testTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

type fakeTenants struct {
	tenant *models.Tenant
}

func (f *fakeTenants) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	if f.tenant == nil || f.tenant.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	return f.tenant, nil
}

type recordingNotifier struct {
	created []uuid.UUID
	changes []enums.OrderStatus
}

func (n *recordingNotifier) OrderCreated(_ context.Context, order *models.Order) error {
	n.created = append(n.created, order.ID)
	return nil
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, _ *models.Order, _, to enums.OrderStatus) error {
	n.changes = append(n.changes, to)
	return nil
}

type serviceFixture struct {
	svc      Service
	db       *gorm.DB
	repo     Repository
	tenant   *models.Tenant
	notifier *recordingNotifier
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := setupOrdersTestDB(t)
	tenant := &models.Tenant{
		ID:                uuid.New(),
		Name:              "pt maju jaya",
		OrderNumberPrefix: "SO",
		Timezone:          "UTC",
		Currency:          "IDR",
		TaxPercent:        decimal.NewFromInt(10),
		IsActive:          true,
	}
	repo := NewRepository(db)
	engine, err := discounts.NewEngine(discounts.NewRepository(db))
	require.NoError(t, err)
	notifier := &recordingNotifier{}

	svc, err := NewService(&testTx{db: db}, repo, &fakeTenants{tenant: tenant}, engine, notifier, nil, nil, Config{})
	require.NoError(t, err)

	return &serviceFixture{svc: svc, db: db, repo: repo, tenant: tenant, notifier: notifier}
}

func (f *serviceFixture) seedCustomer(t *testing.T, tier *models.CustomerTier) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		ID:       uuid.New(),
		TenantID: f.tenant.ID,
		Name:     "toko sumber rejeki",
		IsActive: true,
	}
	if tier != nil {
		tier.ID = uuid.New()
		tier.TenantID = f.tenant.ID
		require.NoError(t, f.db.Create(tier).Error)
		customer.TierID = &tier.ID
	}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func (f *serviceFixture) seedProduct(t *testing.T, name string, price int64, stockQty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		TenantID:      f.tenant.ID,
		SKU:           "SKU-" + uuid.NewString()[:8],
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stockQty,
		IsActive:      true,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *serviceFixture) reloadProduct(t *testing.T, id uuid.UUID) *models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, f.db.First(&product, "id = ?", id).Error)
	return &product
}

func (f *serviceFixture) reloadCustomer(t *testing.T, id uuid.UUID) *models.Customer {
	t.Helper()
	var customer models.Customer
	require.NoError(t, f.db.First(&customer, "id = ?", id).Error)
	return &customer
}

func TestCreateOrderPortalHappyPath(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "aqua galon", 5000, 100)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 4}},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Warnings)

	order := result.Order
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Regexp(t, `^SO\d{2}\d{4}$`, order.OrderNumber)
	assert.True(t, order.SubtotalAmount.Equal(decimal.NewFromInt(20000)), "subtotal %s", order.SubtotalAmount)
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(2000)), "tax %s", order.TaxAmount)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(22000)), "total %s", order.TotalAmount)
	assert.True(t, order.SubtotalAmount.Sub(order.DiscountAmount).Add(order.TaxAmount).Equal(order.TotalAmount))

	reloaded := f.reloadProduct(t, product.ID)
	assert.Equal(t, 100, reloaded.StockQuantity, "creation reserves, never decrements stock")
	assert.Equal(t, 4, reloaded.ReservedQuantity)

	balance := f.reloadCustomer(t, customer.ID)
	assert.True(t, balance.DebtBalance.Equal(order.TotalAmount))

	history, err := f.repo.ListStatusHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, enums.OrderStatusPending, history[0].ToStatus)
	assert.Equal(t, actor, history[0].ChangedBy)

	require.Len(t, f.notifier.created, 1)
	assert.Equal(t, order.ID, f.notifier.created[0])
}

func TestCreateOrderPortalAppliesBestDiscount(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "kopi sachet", 10000, 50)

	require.NoError(t, f.db.Create(&models.Discount{
		ID:       uuid.New(),
		TenantID: f.tenant.ID,
		Name:     "promo gajian",
		Type:     enums.DiscountTypePercentage,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	}).Error)

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    uuid.New(),
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 3}},
	})
	require.NoError(t, err)

	order := result.Order
	assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(3000)), "discount %s", order.DiscountAmount)
	require.NotNil(t, order.DiscountID)
	require.NotNil(t, order.Notes)
	assert.Contains(t, *order.Notes, "Discount applied: promo gajian")
	// tax applies after the discount: (30000 - 3000) * 10%
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(2700)), "tax %s", order.TaxAmount)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(29700)), "total %s", order.TotalAmount)
}

func TestCreateOrderPortalSkipsInvalidLines(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	good := f.seedProduct(t, "teh botol", 4000, 30)
	inactive := f.seedProduct(t, "produk lama", 2000, 30)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    uuid.New(),
		Channel:    enums.OrderChannelPortal,
		Items: []OrderLine{
			{ProductID: good.ID, Qty: 2},
			{ProductID: inactive.ID, Qty: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, good.ID, result.Order.Items[0].ProductID)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, inactive.ID, result.Warnings[0].ProductID)
	assert.True(t, result.Order.SubtotalAmount.Equal(decimal.NewFromInt(8000)))
}

func TestCreateOrderRepFailsOnAnyInvalidLine(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	good := f.seedProduct(t, "teh botol", 4000, 30)
	scarce := f.seedProduct(t, "gula pasir", 15000, 1)

	_, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    uuid.New(),
		Channel:    enums.OrderChannelRep,
		Items: []OrderLine{
			{ProductID: good.ID, Qty: 2},
			{ProductID: scarce.ID, Qty: 10},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	// nothing committed
	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 0, f.reloadProduct(t, good.ID).ReservedQuantity)
}

func TestCreateOrderNoValidItems(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)

	_, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    uuid.New(),
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: uuid.New(), Qty: 1}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNoValidItems, typed.Code())
}

func TestCreateOrderCreditRejectionRollsBackEverything(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, &models.CustomerTier{Name: "cash only", CreditAllowed: false})
	product := f.seedProduct(t, "minyak goreng", 25000, 40)

	_, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    uuid.New(),
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 2}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeCreditNotAllowed, typed.Code())

	var orderCount, historyCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, f.db.Model(&models.OrderStatusHistory{}).Count(&historyCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, historyCount)
	assert.Equal(t, 0, f.reloadProduct(t, product.ID).ReservedQuantity)
	assert.True(t, f.reloadCustomer(t, customer.ID).DebtBalance.IsZero())
	assert.Empty(t, f.notifier.created)
}

func TestCancelOrderRestoresReservationsAndDebt(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "sarden kaleng", 12000, 60)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 5}},
	})
	require.NoError(t, err)
	require.Equal(t, 5, f.reloadProduct(t, product.ID).ReservedQuantity)

	canceled, err := f.svc.CancelOrder(ctx, f.tenant.ID, result.Order.ID, actor, "customer changed mind")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, canceled.Status)
	require.NotNil(t, canceled.CancelledAt)

	reloaded := f.reloadProduct(t, product.ID)
	assert.Equal(t, 0, reloaded.ReservedQuantity)
	assert.Equal(t, 60, reloaded.StockQuantity)
	assert.True(t, f.reloadCustomer(t, customer.ID).DebtBalance.IsZero())

	history, err := f.repo.ListStatusHistory(ctx, result.Order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, enums.OrderStatusCancelled, history[1].ToStatus)
	require.NotNil(t, history[1].FromStatus)
	assert.Equal(t, enums.OrderStatusPending, *history[1].FromStatus)
	require.NotNil(t, history[1].Notes)
	assert.Equal(t, "customer changed mind", *history[1].Notes)
}

func TestCancelOrderRejectsLateStatuses(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "beras 5kg", 70000, 20)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", result.Order.ID).
		Update("status", enums.OrderStatusDelivering).Error)

	_, err = f.svc.CancelOrder(ctx, f.tenant.ID, result.Order.ID, actor, "")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidStatus, typed.Code())

	// reservation untouched by the rejected cancel
	assert.Equal(t, 1, f.reloadProduct(t, product.ID).ReservedQuantity)
}

func TestUpdateStatusWalksLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "susu kotak", 8000, 25)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 6}},
	})
	require.NoError(t, err)
	orderID := result.Order.ID

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusApproved,
		enums.OrderStatusDelivering,
		enums.OrderStatusDelivered,
	} {
		updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{
			TenantID: f.tenant.ID,
			OrderID:  orderID,
			ToStatus: next,
			ActorID:  actor,
		})
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, updated.Status)
	}

	order, err := f.repo.FindOrder(ctx, f.tenant.ID, orderID)
	require.NoError(t, err)
	require.NotNil(t, order.DeliveredAt)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 6, order.Items[0].QtyDelivered)

	// delivery commits the reservation: goods leave physical stock
	reloaded := f.reloadProduct(t, product.ID)
	assert.Equal(t, 0, reloaded.ReservedQuantity)
	assert.Equal(t, 19, reloaded.StockQuantity)

	var movement models.StockMovement
	require.NoError(t, f.db.First(&movement, "product_id = ?", product.ID).Error)
	assert.Equal(t, enums.StockMovementSaleOut, movement.Type)
	assert.Equal(t, 6, movement.Quantity)
	assert.Equal(t, 25, movement.QuantityBefore)
	assert.Equal(t, 19, movement.QuantityAfter)
	assert.Equal(t, enums.StockReferenceOrder, movement.ReferenceType)
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, orderID, *movement.ReferenceID)

	history, err := f.repo.ListStatusHistory(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, enums.OrderStatusDelivered, history[4].ToStatus)

	assert.Equal(t, []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusApproved,
		enums.OrderStatusDelivering,
		enums.OrderStatusDelivered,
	}, f.notifier.changes)
}

func TestUpdateStatusRejectsSkips(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "mie instan", 3000, 25)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{
		TenantID: f.tenant.ID,
		OrderID:  result.Order.ID,
		ToStatus: enums.OrderStatusDelivered,
		ActorID:  actor,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidStatus, typed.Code())

	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{
		TenantID: f.tenant.ID,
		OrderID:  result.Order.ID,
		ToStatus: enums.OrderStatusReturned,
		ActorID:  actor,
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidStatus, typed.Code())
}

func TestUpdateStatusPartialDelivery(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "air mineral dus", 45000, 40)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 10}},
	})
	require.NoError(t, err)
	orderID := result.Order.ID
	itemID := result.Order.Items[0].ID

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusApproved,
		enums.OrderStatusDelivering,
	} {
		_, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{
			TenantID: f.tenant.ID, OrderID: orderID, ToStatus: next, ActorID: actor,
		})
		require.NoError(t, err)
	}

	// partial without delivered quantities is rejected
	_, err = f.svc.UpdateStatus(ctx, UpdateStatusInput{
		TenantID: f.tenant.ID,
		OrderID:  orderID,
		ToStatus: enums.OrderStatusPartial,
		ActorID:  actor,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	updated, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{
		TenantID:   f.tenant.ID,
		OrderID:    orderID,
		ToStatus:   enums.OrderStatusPartial,
		ActorID:    actor,
		Deliveries: []DeliveryLine{{OrderItemID: itemID, Qty: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPartial, updated.Status)

	order, err := f.repo.FindOrder(ctx, f.tenant.ID, orderID)
	require.NoError(t, err)
	assert.Equal(t, 7, order.Items[0].QtyDelivered)
	assert.Equal(t, 7, order.Items[0].QtyPicked)
	require.NotNil(t, order.DeliveredAt)
	assert.WithinDuration(t, time.Now(), *order.DeliveredAt, time.Minute)

	// the full reservation is released, only the delivered part left stock
	reloaded := f.reloadProduct(t, product.ID)
	assert.Equal(t, 0, reloaded.ReservedQuantity)
	assert.Equal(t, 33, reloaded.StockQuantity)
}

func TestDeliveryCommitsReservation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "galon isi ulang", 6000, 10)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 4, f.reloadProduct(t, product.ID).ReservedQuantity)

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusApproved,
		enums.OrderStatusDelivering,
		enums.OrderStatusDelivered,
	} {
		_, err := f.svc.UpdateStatus(ctx, UpdateStatusInput{
			TenantID: f.tenant.ID, OrderID: result.Order.ID, ToStatus: next, ActorID: actor,
		})
		require.NoError(t, err)
	}

	reloaded := f.reloadProduct(t, product.ID)
	assert.Equal(t, 6, reloaded.StockQuantity)
	assert.Equal(t, 0, reloaded.ReservedQuantity)
}

func TestCreateOrderDiscountIgnoresRejectedLines(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	good := f.seedProduct(t, "sabun batang", 200, 50)
	inactive := f.seedProduct(t, "produk lama", 100, 50)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	discount := &models.Discount{
		ID:       uuid.New(),
		TenantID: f.tenant.ID,
		Name:     "grosir",
		Type:     enums.DiscountTypeVolume,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(discount).Error)
	require.NoError(t, f.db.Create(&models.DiscountTier{
		ID:              uuid.New(),
		DiscountID:      discount.ID,
		MinQty:          10,
		DiscountPercent: decimal.NewFromInt(10),
	}).Error)

	// 2 surviving units plus 20 rejected ones must not reach the tier
	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    uuid.New(),
		Channel:    enums.OrderChannelPortal,
		Items: []OrderLine{
			{ProductID: good.ID, Qty: 2},
			{ProductID: inactive.ID, Qty: 20},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.True(t, result.Order.DiscountAmount.IsZero(), "discount %s", result.Order.DiscountAmount)
	assert.Nil(t, result.Order.DiscountID)
}

func TestCancelOrderAfterPaymentCreditsPaidAmount(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "tepung terigu", 10000, 30)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 2}},
	})
	require.NoError(t, err)
	total := result.Order.TotalAmount // 20000 + 10% tax = 22000

	paid := decimal.NewFromInt(12000)
	_, err = f.svc.RecordPayment(ctx, RecordPaymentInput{
		TenantID: f.tenant.ID,
		OrderID:  result.Order.ID,
		ActorID:  actor,
		Amount:   paid,
	})
	require.NoError(t, err)
	require.True(t, f.reloadCustomer(t, customer.ID).DebtBalance.Equal(total.Sub(paid)))

	_, err = f.svc.CancelOrder(ctx, f.tenant.ID, result.Order.ID, actor, "")
	require.NoError(t, err)

	balance := f.reloadCustomer(t, customer.ID)
	assert.True(t, balance.DebtBalance.IsZero(), "debt %s", balance.DebtBalance)
	assert.True(t, balance.CreditBalance.Equal(paid), "credit %s", balance.CreditBalance)
}

func TestRecordPayment(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t, nil)
	product := f.seedProduct(t, "gas 3kg", 22000, 15)
	actor := uuid.New()

	result, err := f.svc.CreateOrder(ctx, CreateOrderInput{
		TenantID:   f.tenant.ID,
		CustomerID: customer.ID,
		ActorID:    actor,
		Channel:    enums.OrderChannelPortal,
		Items:      []OrderLine{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	total := result.Order.TotalAmount // 22000 + 10% tax = 24200

	partial := decimal.NewFromInt(10000)
	updated, err := f.svc.RecordPayment(ctx, RecordPaymentInput{
		TenantID: f.tenant.ID,
		OrderID:  result.Order.ID,
		ActorID:  actor,
		Amount:   partial,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPartial, updated.PaymentStatus)
	assert.True(t, updated.PaidAmount.Equal(partial))
	assert.True(t, f.reloadCustomer(t, customer.ID).DebtBalance.Equal(total.Sub(partial)))

	_, err = f.svc.RecordPayment(ctx, RecordPaymentInput{
		TenantID: f.tenant.ID,
		OrderID:  result.Order.ID,
		ActorID:  actor,
		Amount:   total, // exceeds the remaining balance
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	updated, err = f.svc.RecordPayment(ctx, RecordPaymentInput{
		TenantID: f.tenant.ID,
		OrderID:  result.Order.ID,
		ActorID:  actor,
		Amount:   total.Sub(partial),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)
	assert.True(t, updated.PaidAmount.Equal(total))
	assert.True(t, f.reloadCustomer(t, customer.ID).DebtBalance.IsZero())
}
