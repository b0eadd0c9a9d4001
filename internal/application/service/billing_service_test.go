package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/posbilling/internal/domain/billing"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/enum"
	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/internal/infrastructure/database/dbtest"
	"github.com/sangkips/posbilling/internal/infrastructure/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/metrics"
	"github.com/sangkips/posbilling/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type countingWaker struct {
	calls atomic.Int32
}

func (w *countingWaker) Wake() { w.calls.Add(1) }

type billingFixture struct {
	db            *gorm.DB
	svc           *BillingService
	waker         *countingWaker
	products      domainRepo.ProductRepository
	denominations domainRepo.DenominationRepository
	purchases     domainRepo.PurchaseRepository
	notifications domainRepo.NotificationRepository
}

func newBillingFixture(t *testing.T, till map[int64]int) *billingFixture {
	t.Helper()
	db := dbtest.New(t)
	f := &billingFixture{
		db:            db,
		waker:         &countingWaker{},
		products:      repository.NewProductRepository(db),
		denominations: repository.NewDenominationRepository(db),
		purchases:     repository.NewPurchaseRepository(db),
		notifications: repository.NewNotificationRepository(db),
	}
	f.svc = NewBillingService(
		f.products,
		f.denominations,
		repository.NewTransactor(db),
		f.waker,
		metrics.NewBillingMetrics(prometheus.NewRegistry()),
		logger.Nop(),
	)

	ctx := context.Background()
	for value, count := range till {
		_, err := f.denominations.Upsert(ctx, value, count)
		require.NoError(t, err)
	}
	return f
}

func (f *billingFixture) addProduct(t *testing.T, code string, price, tax string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Code:            code,
		Name:            code,
		UnitPrice:       decimal.RequireFromString(price),
		TaxPercentage:   decimal.RequireFromString(tax),
		AvailableStocks: stock,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *billingFixture) till(t *testing.T) map[int64]int {
	t.Helper()
	rows, err := f.denominations.List(context.Background())
	require.NoError(t, err)
	counts := make(map[int64]int, len(rows))
	for _, d := range rows {
		counts[d.Value] = d.AvailableCount
	}
	return counts
}

func (f *billingFixture) stock(t *testing.T, p *entity.Product) int {
	t.Helper()
	got, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got.AvailableStocks
}

func (f *billingFixture) purchaseCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.purchases.List(context.Background(), &domainRepo.PurchaseFilterParams{Pagination: pagination.NewParams(1, 10)})
	require.NoError(t, err)
	return total
}

func TestCheckoutCompletesSale(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{500: 2, 50: 5, 20: 1, 10: 0, 5: 1, 2: 1, 1: 1})
	tea := f.addProduct(t, "TEA", "100", "10", 10)

	out, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: " Buyer@Example.com ",
		AmountPaid:    decimal.NewFromInt(290),
		Lines:         []LineInput{{ProductCode: "tea", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, "220", out.Bill.NetTotal.String())
	assert.Equal(t, "220", out.Bill.RoundedTotal.String())
	assert.Equal(t, map[int64]int{50: 1, 20: 1}, out.Change.Allocation)
	assert.Equal(t, "70", out.Purchase.BalanceReturned.String())
	assert.Equal(t, "buyer@example.com", out.Purchase.CustomerEmail)

	// only the denominations handed out move
	assert.Equal(t, map[int64]int{500: 2, 50: 4, 20: 0, 10: 0, 5: 1, 2: 1, 1: 1}, f.till(t))
	assert.Equal(t, 8, f.stock(t, tea))
	assert.EqualValues(t, 1, f.waker.calls.Load())

	stored, err := f.purchases.GetWithItems(context.Background(), out.Purchase.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, entity.ChangeBreakdown{50: 1, 20: 1}, stored.ChangeGiven)

	queued, err := f.notifications.ListByPurchase(context.Background(), out.Purchase.ID)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, enum.NotificationStatusPending, queued[0].Status)
	assert.Equal(t, "buyer@example.com", queued[0].Recipient)
}

func TestCheckoutInsufficientPaymentMutatesNothing(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{50: 5, 1: 5})
	tea := f.addProduct(t, "TEA", "100", "10", 10)
	before := f.till(t)

	_, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(219),
		Lines:         []LineInput{{ProductCode: "TEA", Quantity: 2}},
	})
	require.ErrorIs(t, err, apperror.ErrInsufficientPayment)
	assert.Equal(t, 422, apperror.GetAppError(err).Code)

	assert.Equal(t, before, f.till(t))
	assert.Equal(t, 10, f.stock(t, tea))
	assert.Zero(t, f.purchaseCount(t))
	assert.Zero(t, f.waker.calls.Load())
}

func TestCheckoutInsufficientChangeMutatesNothing(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{50: 0, 20: 1, 10: 0})
	cake := f.addProduct(t, "CAKE", "60", "0", 3)
	before := f.till(t)

	_, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(100),
		Lines:         []LineInput{{ProductCode: "CAKE", Quantity: 1}},
	})
	require.ErrorIs(t, err, apperror.ErrInsufficientChange)

	details, ok := apperror.GetAppError(err).Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "20", details["remaining"].(decimal.Decimal).String())

	assert.Equal(t, before, f.till(t))
	assert.Equal(t, 3, f.stock(t, cake))
	assert.Zero(t, f.purchaseCount(t))
}

func TestCheckoutFractionalBalance(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{1: 10})
	f.addProduct(t, "GUM", "10.5", "0", 5)

	// rounded total is 10, so paying 10.5 leaves half a unit nobody can return
	_, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.RequireFromString("10.5"),
		Lines:         []LineInput{{ProductCode: "GUM", Quantity: 1}},
	})
	require.ErrorIs(t, err, apperror.ErrInsufficientChange)

	out, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(10),
		Lines:         []LineInput{{ProductCode: "GUM", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Change.Allocation)
	assert.Equal(t, map[int64]int{1: 10}, f.till(t))
}

func TestCheckoutStockAndUnknownProducts(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{50: 5})
	f.addProduct(t, "TEA", "100", "10", 1)

	_, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(500),
		Lines:         []LineInput{{ProductCode: "TEA", Quantity: 1}, {ProductCode: "TEA", Quantity: 1}},
	})
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)
	short, ok := apperror.GetAppError(err).Details.([]StockShortage)
	require.True(t, ok)
	assert.Equal(t, []StockShortage{{ProductCode: "TEA", Requested: 2, Available: 1}}, short)

	_, err = f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(500),
		Lines:         []LineInput{{ProductCode: "NOPE", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	_, err = f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(500),
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	assert.Zero(t, f.purchaseCount(t))
}

func TestCheckoutMergesRepeatedLines(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{500: 1})
	f.addProduct(t, "TEA", "100", "10", 10)
	f.addProduct(t, "CAKE", "30", "0", 10)

	out, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    decimal.NewFromInt(250),
		Lines: []LineInput{
			{ProductCode: "TEA", Quantity: 1},
			{ProductCode: "CAKE", Quantity: 1},
			{ProductCode: "TEA", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Purchase.Items, 2)
	assert.Equal(t, "TEA", out.Purchase.Items[0].Product.Code)
	assert.Equal(t, 2, out.Purchase.Items[0].Quantity)
	assert.Equal(t, "CAKE", out.Purchase.Items[1].Product.Code)
	assert.Equal(t, "250", out.Bill.RoundedTotal.String())
}

func TestQuoteDoesNotPersist(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{50: 0, 20: 1, 10: 0})
	f.addProduct(t, "CAKE", "60", "0", 3)

	paid := decimal.NewFromInt(100)
	out, err := f.svc.Quote(context.Background(), &QuoteInput{
		Lines:      []LineInput{{ProductCode: "CAKE", Quantity: 1}},
		AmountPaid: &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, "60", out.Bill.RoundedTotal.String())
	require.NotNil(t, out.Change)
	assert.True(t, out.Change.Payable)
	assert.False(t, out.Change.Covered)
	assert.Equal(t, map[int64]int{20: 1}, out.Change.Allocation)
	assert.Equal(t, "20", out.Change.Remaining.String())

	short := decimal.NewFromInt(10)
	out, err = f.svc.Quote(context.Background(), &QuoteInput{
		Lines:      []LineInput{{ProductCode: "CAKE", Quantity: 1}},
		AmountPaid: &short,
	})
	require.NoError(t, err)
	assert.False(t, out.Change.Payable)

	out, err = f.svc.Quote(context.Background(), &QuoteInput{
		Lines: []LineInput{{ProductCode: "CAKE", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Change)

	assert.Equal(t, map[int64]int{50: 0, 20: 1, 10: 0}, f.till(t))
	assert.Zero(t, f.purchaseCount(t))
}

func TestQuoteProjectsTillAfterChange(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{50: 2, 20: 2})
	f.addProduct(t, "CAKE", "60", "0", 3)

	paid := decimal.NewFromInt(130)
	out, err := f.svc.Quote(context.Background(), &QuoteInput{
		Lines:      []LineInput{{ProductCode: "CAKE", Quantity: 1}},
		AmountPaid: &paid,
	})
	require.NoError(t, err)
	require.True(t, out.Change.Covered)
	assert.Equal(t, map[int64]int{50: 1, 20: 1}, out.Change.Allocation)
	assert.Equal(t, map[int64]int{50: 1, 20: 1}, out.Change.TillAfter)
	assert.Equal(t, map[int64]int{50: 2, 20: 2}, f.till(t))
}

func TestCheckoutRejectsAmountBeyondMoneyColumn(t *testing.T) {
	f := newBillingFixture(t, map[int64]int{10: 5})
	tea := f.addProduct(t, "TEA", "100", "0", 5)

	// 2^64 + 110 would wrap to a balance of 10 if truncated to int64
	huge := decimal.RequireFromString("18446744073709551726")
	_, err := f.svc.Checkout(context.Background(), &CheckoutInput{
		CustomerEmail: "a@example.com",
		AmountPaid:    huge,
		Lines:         []LineInput{{ProductCode: "TEA", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	_, err = f.svc.Quote(context.Background(), &QuoteInput{
		Lines:      []LineInput{{ProductCode: "TEA", Quantity: 1}},
		AmountPaid: &huge,
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	assert.Equal(t, map[int64]int{10: 5}, f.till(t))
	assert.Equal(t, 5, f.stock(t, tea))
	assert.Zero(t, f.purchaseCount(t))
}

func TestChangeForBalanceBeyondInt64(t *testing.T) {
	balance := decimal.RequireFromString("18446744073709551626")
	change, remaining := changeFor(balance, []entity.Denomination{{Value: 10, AvailableCount: 5}})

	assert.Empty(t, change.Allocation)
	assert.True(t, remaining.Equal(balance))

	change, remaining = changeFor(decimal.RequireFromString("30.5"), []entity.Denomination{{Value: 10, AvailableCount: 5}})
	assert.Equal(t, map[int64]int{10: 3}, change.Allocation)
	assert.Equal(t, "0.5", remaining.String())
}

func TestInsufficientStockReportsCurrentStock(t *testing.T) {
	f := newBillingFixture(t, nil)
	tea := f.addProduct(t, "TEA", "100", "0", 1)

	// the line was resolved while five were on the shelf
	stale := *tea
	stale.AvailableStocks = 5
	lines := []billing.Line{{Product: &stale, Quantity: 3}}

	err := insufficientStockFor(context.Background(), f.products, lines, []uuid.UUID{tea.ID})
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)
	short, ok := apperror.GetAppError(err).Details.([]StockShortage)
	require.True(t, ok)
	assert.Equal(t, []StockShortage{{ProductCode: "TEA", Requested: 3, Available: 1}}, short)
}

func TestCheckoutOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeCompleted, checkoutOutcome(nil))
	assert.Equal(t, metrics.OutcomeInsufficientChange, checkoutOutcome(insufficientChange(decimal.NewFromInt(5), decimal.NewFromInt(5))))
	assert.Equal(t, metrics.OutcomeRejected, checkoutOutcome(apperror.NewBadRequestError("x")))
	assert.Equal(t, metrics.OutcomeError, checkoutOutcome(assert.AnError))
}
