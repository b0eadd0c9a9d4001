package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
)

// NotificationRepository defines the interface for the invoice outbox
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *entity.InvoiceNotification) error
	// ListDue returns pending notifications whose next attempt is at or before now, oldest first
	ListDue(ctx context.Context, now time.Time, limit int) ([]entity.InvoiceNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	// MarkRetry records a failed attempt and schedules the next one
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastErr string, next time.Time) error
	// MarkFailed records the final failed attempt
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string) error
	ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]entity.InvoiceNotification, error)
}
