package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/enum"
	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new invoice outbox repository
func NewNotificationRepository(db *gorm.DB) domainRepo.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Enqueue(ctx context.Context, n *entity.InvoiceNotification) error {
	return r.db.WithContext(ctx).Omit("Purchase").Create(n).Error
}

func (r *notificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]entity.InvoiceNotification, error) {
	var notifications []entity.InvoiceNotification
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", enum.NotificationStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.InvoiceNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     enum.NotificationStatusSent,
			"sent_at":    sentAt,
			"last_error": nil,
			"attempts":   gorm.Expr("attempts + 1"),
		}).Error
}

func (r *notificationRepository) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastErr string, next time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.InvoiceNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":        attempts,
			"last_error":      lastErr,
			"next_attempt_at": next,
		}).Error
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string) error {
	return r.db.WithContext(ctx).Model(&entity.InvoiceNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     enum.NotificationStatusFailed,
			"attempts":   attempts,
			"last_error": lastErr,
		}).Error
}

func (r *notificationRepository) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]entity.InvoiceNotification, error) {
	var notifications []entity.InvoiceNotification
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC").
		Find(&notifications).Error
	return notifications, err
}
