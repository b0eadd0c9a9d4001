package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/enum"
	"gorm.io/gorm"
)

// InvoiceNotification is an outbox row: one invoice email owed to a customer.
type InvoiceNotification struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID    uuid.UUID               `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Recipient     string                  `gorm:"size:255;not null" json:"recipient"`
	Status        enum.NotificationStatus `gorm:"not null;default:0;index:idx_invoice_due,priority:1" json:"status"`
	Attempts      int                     `gorm:"not null;default:0" json:"attempts"`
	LastError     *string                 `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time               `gorm:"not null;index:idx_invoice_due,priority:2" json:"next_attempt_at"`
	SentAt        *time.Time              `json:"sent_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`

	// Relationships
	Purchase *Purchase `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates a UUID before creating a new notification
func (n *InvoiceNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceNotification model
func (InvoiceNotification) TableName() string {
	return "invoice_notifications"
}

// NewInvoiceNotification queues an invoice for immediate delivery
func NewInvoiceNotification(purchaseID uuid.UUID, recipient string, now time.Time) *InvoiceNotification {
	return &InvoiceNotification{
		PurchaseID:    purchaseID,
		Recipient:     recipient,
		Status:        enum.NotificationStatusPending,
		NextAttemptAt: now,
	}
}
