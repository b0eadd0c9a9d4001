package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes
const (
	OutcomeCompleted           = "completed"
	OutcomeInsufficientPayment = "insufficient_payment"
	OutcomeInsufficientChange  = "insufficient_change"
	OutcomeInsufficientStock   = "insufficient_stock"
	OutcomeRejected            = "rejected"
	OutcomeError               = "error"
)

// Invoice delivery results
const (
	NotificationSent   = "sent"
	NotificationRetry  = "retry"
	NotificationFailed = "failed"
)

// BillingMetrics records checkout and invoice delivery activity.
// A nil *BillingMetrics is valid and records nothing.
type BillingMetrics struct {
	checkouts        *prometheus.CounterVec
	checkoutDuration *prometheus.HistogramVec
	notifications    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

// NewBillingMetrics registers the billing metrics on the provided registerer.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		return &BillingMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_checkout_duration_seconds",
		Help:    "Duration of checkout requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_invoice_notifications_total",
		Help: "Invoice email delivery attempts by result.",
	}, []string{"result"})
	dispatchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_invoice_dispatch_duration_seconds",
		Help:    "Duration of one invoice dispatcher batch in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(checkouts, checkoutDuration, notifications, dispatchDuration)
	return &BillingMetrics{
		checkouts:        checkouts,
		checkoutDuration: checkoutDuration,
		notifications:    notifications,
		dispatchDuration: dispatchDuration,
	}
}

// ObserveCheckout counts a checkout and records how long it took.
func (m *BillingMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.checkouts.WithLabelValues(outcome).Inc()
	m.checkoutDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncNotification counts an invoice delivery attempt.
func (m *BillingMetrics) IncNotification(result string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveDispatch records the duration of a dispatcher batch.
func (m *BillingMetrics) ObserveDispatch(duration time.Duration) {
	if m == nil || m.dispatchDuration == nil {
		return
	}
	m.dispatchDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
