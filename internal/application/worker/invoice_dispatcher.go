package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/pkg/email"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/metrics"
	"github.com/sangkips/posbilling/pkg/utils"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
)

const (
	defaultPollInterval   = 5 * time.Second
	defaultBatchSize      = 20
	defaultMaxAttempts    = 5
	defaultBaseBackoff    = 30 * time.Second
	defaultMaxBackoff     = time.Hour
	defaultSendRetryDelay = 200 * time.Millisecond
)

// DispatcherParams configure the invoice dispatcher.
type DispatcherParams struct {
	Notifications repository.NotificationRepository
	Purchases     repository.PurchaseRepository
	// Idempotency keys are swept once per cycle when set
	Idempotency repository.IdempotencyRepository
	Sender      email.Sender
	Lock        Lock
	Logger      *logger.Logger
	Metrics     *metrics.BillingMetrics

	ShopName     string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	// SendRetries is how many times a single cycle re-sends before giving the row back
	SendRetries    uint64
	SendRetryDelay time.Duration
}

// InvoiceDispatcher drains the invoice outbox and emails customers.
type InvoiceDispatcher struct {
	notifications repository.NotificationRepository
	purchases     repository.PurchaseRepository
	idempotency   repository.IdempotencyRepository
	sender        email.Sender
	lock          Lock
	logg          *logger.Logger
	metrics       *metrics.BillingMetrics

	shopName       string
	interval       time.Duration
	batchSize      int
	maxAttempts    int
	baseBackoff    time.Duration
	maxBackoff     time.Duration
	sendRetries    uint64
	sendRetryDelay time.Duration

	wake chan struct{}
	now  func() time.Time
}

// NewInvoiceDispatcher builds a dispatcher.
func NewInvoiceDispatcher(params DispatcherParams) (*InvoiceDispatcher, error) {
	if params.Notifications == nil || params.Purchases == nil {
		return nil, errors.New("notification and purchase repositories required")
	}
	if params.Sender == nil {
		return nil, errors.New("email sender required")
	}
	lock := params.Lock
	if lock == nil {
		lock = NoopLock{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	d := &InvoiceDispatcher{
		notifications:  params.Notifications,
		purchases:      params.Purchases,
		idempotency:    params.Idempotency,
		sender:         params.Sender,
		lock:           lock,
		logg:           logg,
		metrics:        params.Metrics,
		shopName:       params.ShopName,
		interval:       orDuration(params.PollInterval, defaultPollInterval),
		batchSize:      params.BatchSize,
		maxAttempts:    params.MaxAttempts,
		baseBackoff:    orDuration(params.BaseBackoff, defaultBaseBackoff),
		maxBackoff:     orDuration(params.MaxBackoff, defaultMaxBackoff),
		sendRetries:    params.SendRetries,
		sendRetryDelay: orDuration(params.SendRetryDelay, defaultSendRetryDelay),
		wake:           make(chan struct{}, 1),
		now:            time.Now,
	}
	if d.batchSize <= 0 {
		d.batchSize = defaultBatchSize
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = defaultMaxAttempts
	}
	return d, nil
}

// Wake asks for a cycle as soon as possible. It never blocks.
func (d *InvoiceDispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run polls the outbox until ctx is canceled.
func (d *InvoiceDispatcher) Run(ctx context.Context) error {
	ctx = d.logg.WithField(ctx, "component", "invoice_dispatcher")
	d.runCycle(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logg.Info(ctx, "invoice dispatcher stopped")
			return nil
		case <-ticker.C:
			d.runCycle(ctx)
		case <-d.wake:
			d.runCycle(ctx)
		}
	}
}

func (d *InvoiceDispatcher) runCycle(ctx context.Context) {
	if err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
		d.logg.Error(ctx, "invoice dispatch cycle failed", err)
	}
}

// RunOnce sends every notification that is due and returns the storage errors it met.
// Delivery failures are recorded on the rows, not returned.
func (d *InvoiceDispatcher) RunOnce(ctx context.Context) (err error) {
	locked, err := d.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		d.logg.Debug(ctx, "another dispatcher holds the lock; skipping this cycle")
		return nil
	}
	defer func() {
		if relErr := d.lock.Release(ctx); relErr != nil {
			err = multierr.Append(err, fmt.Errorf("lock release: %w", relErr))
		}
	}()

	start := d.now()
	defer func() { d.metrics.ObserveDispatch(time.Since(start)) }()

	due, err := d.notifications.ListDue(ctx, start, d.batchSize)
	if err != nil {
		return fmt.Errorf("list due notifications: %w", err)
	}

	for i := range due {
		if ctx.Err() != nil {
			break
		}
		err = multierr.Append(err, d.deliver(ctx, &due[i]))
	}

	if d.idempotency != nil {
		if _, sweepErr := d.idempotency.DeleteExpired(ctx, start); sweepErr != nil {
			err = multierr.Append(err, fmt.Errorf("sweep idempotency keys: %w", sweepErr))
		}
	}
	return err
}

func (d *InvoiceDispatcher) deliver(ctx context.Context, n *entity.InvoiceNotification) error {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"notification_id": n.ID.String(),
		"purchase_id":     n.PurchaseID.String(),
	})
	attempts := n.Attempts + 1

	purchase, err := d.purchases.GetWithItems(ctx, n.PurchaseID)
	if err != nil {
		return fmt.Errorf("load purchase %s: %w", n.PurchaseID, err)
	}
	if purchase == nil {
		d.metrics.IncNotification(metrics.NotificationFailed)
		return d.notifications.MarkFailed(ctx, n.ID, attempts, "purchase not found")
	}

	msg, err := d.buildMessage(n.Recipient, purchase)
	if err != nil {
		d.metrics.IncNotification(metrics.NotificationFailed)
		return d.notifications.MarkFailed(ctx, n.ID, attempts, err.Error())
	}

	backoff := retry.WithMaxRetries(d.sendRetries, retry.NewExponential(d.sendRetryDelay))
	sendErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := d.sender.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if sendErr == nil {
		d.metrics.IncNotification(metrics.NotificationSent)
		d.logg.Info(ctx, "invoice sent")
		return d.notifications.MarkSent(ctx, n.ID, d.now())
	}

	if attempts >= d.maxAttempts {
		d.metrics.IncNotification(metrics.NotificationFailed)
		d.logg.Error(d.logg.WithField(ctx, "attempts", attempts), "invoice delivery abandoned", sendErr)
		return d.notifications.MarkFailed(ctx, n.ID, attempts, sendErr.Error())
	}

	next := d.now().Add(d.retryDelay(attempts))
	d.metrics.IncNotification(metrics.NotificationRetry)
	d.logg.Warn(d.logg.WithFields(ctx, map[string]any{"attempts": attempts, "next_attempt_at": next, "error": sendErr.Error()}), "invoice delivery failed, will retry")
	return d.notifications.MarkRetry(ctx, n.ID, attempts, sendErr.Error(), next)
}

// retryDelay doubles the base backoff per attempt, capped at maxBackoff.
func (d *InvoiceDispatcher) retryDelay(attempts int) time.Duration {
	delay := d.baseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= d.maxBackoff {
			return d.maxBackoff
		}
	}
	return delay
}

func (d *InvoiceDispatcher) buildMessage(recipient string, p *entity.Purchase) (email.Message, error) {
	data := BuildInvoice(d.shopName, p)
	body, err := email.RenderInvoice(data)
	if err != nil {
		return email.Message{}, fmt.Errorf("render invoice: %w", err)
	}
	return email.Message{
		To:       recipient,
		Subject:  email.InvoiceSubject(data),
		HTMLBody: body,
	}, nil
}

// BuildInvoice formats a purchase for the invoice email.
func BuildInvoice(shopName string, p *entity.Purchase) email.InvoiceData {
	data := email.InvoiceData{
		ShopName:        shopName,
		ReceiptNo:       utils.ReceiptNo(p.ID, p.CreatedAt),
		CustomerEmail:   p.CustomerEmail,
		Date:            p.CreatedAt.Format("2006-01-02 15:04"),
		Items:           make([]email.InvoiceLine, 0, len(p.Items)),
		TotalWithoutTax: p.TotalWithoutTax.StringFixed(2),
		TotalTax:        p.TotalTax.StringFixed(2),
		NetTotal:        p.NetTotal.StringFixed(2),
		RoundedTotal:    p.RoundedTotal.StringFixed(2),
		AmountPaid:      p.AmountPaid.StringFixed(2),
		BalanceReturned: p.BalanceReturned.StringFixed(2),
	}

	for _, item := range p.Items {
		line := email.InvoiceLine{
			Name:          "Product",
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice.StringFixed(2),
			TaxPercentage: item.TaxPercentage.StringFixed(2),
			PurchasePrice: item.PurchasePrice.StringFixed(2),
			TaxAmount:     item.TaxAmount.StringFixed(2),
			TotalPrice:    item.TotalPrice.StringFixed(2),
		}
		if item.Product != nil {
			line.Code = item.Product.Code
			line.Name = item.Product.Name
		}
		data.Items = append(data.Items, line)
	}

	values := make([]int64, 0, len(p.ChangeGiven))
	for value := range p.ChangeGiven {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] > values[j] })
	for _, value := range values {
		data.Change = append(data.Change, email.InvoiceChange{Value: value, Count: p.ChangeGiven[value]})
	}

	return data
}

func orDuration(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
