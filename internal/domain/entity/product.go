package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents an item on sale at the counter
type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Code            string          `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`
	TaxPercentage   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_percentage"`
	AvailableStocks int             `gorm:"not null;default:0;check:available_stocks >= 0" json:"available_stocks"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// HasStock reports whether quantity units can be sold
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && quantity <= p.AvailableStocks
}
