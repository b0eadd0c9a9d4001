package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/billing"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/repository"
	infraRepo "github.com/sangkips/posbilling/internal/infrastructure/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/metrics"
	"github.com/sangkips/posbilling/pkg/utils"
	"github.com/shopspring/decimal"
)

// InvoiceWaker nudges the invoice dispatcher after new work is committed.
// Wake must not block.
type InvoiceWaker interface {
	Wake()
}

// BillingService prices baskets and completes sales against the till
type BillingService struct {
	productRepo      repository.ProductRepository
	denominationRepo repository.DenominationRepository
	transactor       repository.Transactor
	waker            InvoiceWaker
	metrics          *metrics.BillingMetrics
	log              *logger.Logger
	now              func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(
	productRepo repository.ProductRepository,
	denominationRepo repository.DenominationRepository,
	transactor repository.Transactor,
	waker InvoiceWaker,
	m *metrics.BillingMetrics,
	log *logger.Logger,
) *BillingService {
	if log == nil {
		log = logger.Nop()
	}
	return &BillingService{
		productRepo:      productRepo,
		denominationRepo: denominationRepo,
		transactor:       transactor,
		waker:            waker,
		metrics:          m,
		log:              log,
		now:              time.Now,
	}
}

// LineInput is one basket line as entered at the counter
type LineInput struct {
	ProductCode string
	Quantity    int
}

// StockShortage describes a line that asks for more than is on the shelf
type StockShortage struct {
	ProductCode string `json:"product_code"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// QuoteInput represents the quote input
type QuoteInput struct {
	Lines      []LineInput
	AmountPaid *decimal.Decimal
}

// ChangePreview is the change the till would hand back right now
type ChangePreview struct {
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	Allocation map[int64]int   `json:"allocation"`
	Remaining  decimal.Decimal `json:"remaining"`
	// Payable is false when the amount paid is short of the rounded total
	Payable bool `json:"payable"`
	// Covered is true when the till can return the whole balance
	Covered bool `json:"covered"`
	// TillAfter is the till once this change is paid out, set only when Covered
	TillAfter map[int64]int `json:"till_after,omitempty"`
}

// QuoteOutput represents the quote output
type QuoteOutput struct {
	Bill   billing.Bill
	Change *ChangePreview
}

// Quote prices the basket without touching stock or the till
func (s *BillingService) Quote(ctx context.Context, input *QuoteInput) (*QuoteOutput, error) {
	lines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	out := &QuoteOutput{Bill: billing.ComputeBill(lines)}
	if input.AmountPaid == nil {
		return out, nil
	}
	if err := checkAmountPaid(*input.AmountPaid); err != nil {
		return nil, err
	}

	preview := &ChangePreview{
		AmountPaid: *input.AmountPaid,
		Allocation: map[int64]int{},
		Balance:    decimal.Zero,
		Remaining:  decimal.Zero,
	}
	out.Change = preview
	if input.AmountPaid.LessThan(out.Bill.RoundedTotal) {
		return out, nil
	}
	preview.Payable = true

	till, err := s.denominationRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	preview.Balance = input.AmountPaid.Sub(out.Bill.RoundedTotal)
	change, remaining := changeFor(preview.Balance, till)
	preview.Allocation = change.Allocation
	preview.Remaining = remaining
	preview.Covered = remaining.IsZero()
	if !preview.Covered {
		return out, nil
	}

	after, err := billing.ApplyChange(till, change.Allocation)
	if err != nil {
		return nil, fmt.Errorf("project till: %w", err)
	}
	preview.TillAfter = make(map[int64]int, len(after))
	for _, d := range after {
		preview.TillAfter[d.Value] = d.AvailableCount
	}
	return out, nil
}

// CheckoutInput represents the checkout input
type CheckoutInput struct {
	CashierID     *uuid.UUID
	CustomerEmail string
	AmountPaid    decimal.Decimal
	Lines         []LineInput
}

// CheckoutOutput represents a completed sale
type CheckoutOutput struct {
	Purchase *entity.Purchase
	Bill     billing.Bill
	Change   billing.Change
}

// Checkout completes a sale. Stock, till and purchase are written in one
// transaction; the invoice is queued in the same transaction and sent later.
func (s *BillingService) Checkout(ctx context.Context, input *CheckoutInput) (out *CheckoutOutput, err error) {
	start := s.now()
	defer func() {
		s.metrics.ObserveCheckout(checkoutOutcome(err), time.Since(start))
	}()

	customerEmail := utils.NormalizeEmail(input.CustomerEmail)
	if customerEmail == "" {
		return nil, apperror.NewBadRequestError("customer_email is required")
	}
	if err := checkAmountPaid(input.AmountPaid); err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	bill := billing.ComputeBill(lines)
	if input.AmountPaid.LessThan(bill.RoundedTotal) {
		return nil, apperror.WithDetails(apperror.ErrInsufficientPayment, map[string]interface{}{
			"amount_due":  bill.RoundedTotal,
			"amount_paid": input.AmountPaid,
			"shortfall":   bill.RoundedTotal.Sub(input.AmountPaid),
		})
	}
	balance := input.AmountPaid.Sub(bill.RoundedTotal)

	var (
		purchase *entity.Purchase
		change   billing.Change
	)
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		till, err := repos.Denominations.ListForUpdate(ctx)
		if err != nil {
			return err
		}

		var remaining decimal.Decimal
		change, remaining = changeFor(balance, till)
		if !remaining.IsZero() {
			return insufficientChange(balance, remaining)
		}

		if err := repos.Denominations.Deduct(ctx, change.Allocation); err != nil {
			if errors.Is(err, infraRepo.ErrTillShort) {
				return insufficientChange(balance, balance)
			}
			return fmt.Errorf("deduct change: %w", err)
		}

		decrements := make(map[uuid.UUID]int, len(lines))
		for _, l := range lines {
			decrements[l.Product.ID] += l.Quantity
		}
		failed, err := repos.Products.AtomicDecrementBatch(ctx, decrements)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if len(failed) > 0 {
			return insufficientStockFor(ctx, repos.Products, lines, failed)
		}

		purchase = newPurchase(input.CashierID, customerEmail, input.AmountPaid, balance, bill, change)
		if err := repos.Purchases.Create(ctx, purchase); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}

		notification := entity.NewInvoiceNotification(purchase.ID, customerEmail, s.now())
		if err := repos.Notifications.Enqueue(ctx, notification); err != nil {
			return fmt.Errorf("queue invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		if !apperror.IsAppError(err) {
			s.log.Error(ctx, "checkout failed", err)
		}
		return nil, err
	}

	if s.waker != nil {
		s.waker.Wake()
	}

	ctx = s.log.WithFields(ctx, map[string]any{
		"purchase_id":   purchase.ID.String(),
		"rounded_total": bill.RoundedTotal.String(),
		"change_given":  change.Given(),
		"items":         len(purchase.Items),
	})
	s.log.Info(ctx, "checkout completed")

	for i := range purchase.Items {
		purchase.Items[i].Product = bill.Items[i].Product
	}

	return &CheckoutOutput{
		Purchase: purchase,
		Bill:     bill,
		Change:   change,
	}, nil
}

// resolveLines validates the basket, merges repeated products and checks stock.
// Lines keep the order in which each product first appears.
func (s *BillingService) resolveLines(ctx context.Context, inputs []LineInput) ([]billing.Line, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewBadRequestError("at least one line is required")
	}

	order := make([]string, 0, len(inputs))
	quantities := make(map[string]int, len(inputs))
	for _, in := range inputs {
		code := utils.NormalizeCode(in.ProductCode)
		if code == "" {
			return nil, apperror.NewBadRequestError("product_code is required")
		}
		if in.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("quantity must be greater than zero")
		}
		if _, seen := quantities[code]; !seen {
			order = append(order, code)
		}
		quantities[code] += in.Quantity
	}

	products, err := s.productRepo.GetByCodes(ctx, order)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*entity.Product, len(products))
	for i := range products {
		byCode[products[i].Code] = &products[i]
	}

	var missing []string
	var short []StockShortage
	lines := make([]billing.Line, 0, len(order))
	for _, code := range order {
		product, ok := byCode[code]
		if !ok {
			missing = append(missing, code)
			continue
		}
		quantity := quantities[code]
		if !product.HasStock(quantity) {
			short = append(short, StockShortage{ProductCode: code, Requested: quantity, Available: product.AvailableStocks})
		}
		lines = append(lines, billing.Line{Product: product, Quantity: quantity})
	}

	if len(missing) > 0 {
		return nil, apperror.WithDetails(apperror.NewNotFoundError("Product"), map[string]interface{}{
			"product_codes": missing,
		})
	}
	if len(short) > 0 {
		return nil, apperror.WithDetails(apperror.ErrInsufficientStock, short)
	}
	return lines, nil
}

var maxWholeBalance = decimal.NewFromInt(math.MaxInt64)

func checkAmountPaid(paid decimal.Decimal) error {
	if paid.IsNegative() {
		return apperror.NewBadRequestError("amount_paid must not be negative")
	}
	if paid.GreaterThan(billing.MaxAmount) {
		return apperror.NewBadRequestError("amount_paid must not exceed " + billing.MaxAmount.StringFixed(2))
	}
	return nil
}

// changeFor runs the greedy pass on the whole part of balance. Anything the
// till cannot return, fractions included, is reported as remaining.
// A balance past int64 is never covered.
func changeFor(balance decimal.Decimal, till []entity.Denomination) (billing.Change, decimal.Decimal) {
	whole := balance.Floor()
	if whole.GreaterThan(maxWholeBalance) {
		return billing.Change{Allocation: map[int64]int{}}, balance
	}
	fraction := balance.Sub(whole)

	change := billing.MakeChange(whole.IntPart(), billing.SortDenominations(till))
	return change, decimal.NewFromInt(change.Remaining).Add(fraction)
}

func newPurchase(cashierID *uuid.UUID, email string, paid, balance decimal.Decimal, bill billing.Bill, change billing.Change) *entity.Purchase {
	items := make([]entity.PurchaseItem, 0, len(bill.Items))
	for i, item := range bill.Items {
		items = append(items, entity.PurchaseItem{
			ProductID:     item.Product.ID,
			Position:      i,
			Quantity:      item.Quantity,
			UnitPrice:     item.Product.UnitPrice,
			TaxPercentage: item.Product.TaxPercentage,
			PurchasePrice: item.PurchasePrice,
			TaxAmount:     item.TaxAmount,
			TotalPrice:    item.TotalPrice,
		})
	}

	return &entity.Purchase{
		CustomerEmail:   email,
		CashierID:       cashierID,
		TotalWithoutTax: bill.TotalWithoutTax,
		TotalTax:        bill.TotalTax,
		NetTotal:        bill.NetTotal,
		RoundedTotal:    bill.RoundedTotal,
		AmountPaid:      paid,
		BalanceReturned: balance,
		ChangeGiven:     entity.ChangeBreakdown(change.Allocation),
		Items:           items,
	}
}

func insufficientChange(balance, remaining decimal.Decimal) error {
	return apperror.WithDetails(apperror.ErrInsufficientChange, map[string]interface{}{
		"balance":   balance,
		"remaining": remaining,
	})
}

// insufficientStockFor reports the lines whose conditional decrement failed,
// with stock re-read through products so another sale's decrement shows.
func insufficientStockFor(ctx context.Context, products repository.ProductRepository, lines []billing.Line, failed []uuid.UUID) error {
	failedSet := make(map[uuid.UUID]struct{}, len(failed))
	for _, id := range failed {
		failedSet[id] = struct{}{}
	}
	var short []billing.Line
	codes := make([]string, 0, len(failed))
	for _, l := range lines {
		if _, ok := failedSet[l.Product.ID]; ok {
			short = append(short, l)
			codes = append(codes, l.Product.Code)
		}
	}

	current, err := products.GetByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("reload stock: %w", err)
	}
	available := make(map[uuid.UUID]int, len(current))
	for _, p := range current {
		available[p.ID] = p.AvailableStocks
	}

	details := make([]StockShortage, 0, len(short))
	for _, l := range short {
		details = append(details, StockShortage{ProductCode: l.Product.Code, Requested: l.Quantity, Available: available[l.Product.ID]})
	}
	return apperror.WithDetails(apperror.ErrInsufficientStock, details)
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCompleted
	case errors.Is(err, apperror.ErrInsufficientPayment):
		return metrics.OutcomeInsufficientPayment
	case errors.Is(err, apperror.ErrInsufficientChange):
		return metrics.OutcomeInsufficientChange
	case errors.Is(err, apperror.ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case apperror.IsAppError(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
