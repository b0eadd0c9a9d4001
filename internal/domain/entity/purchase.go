package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase is a completed sale. It is written once at checkout and never updated.
type Purchase struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CustomerEmail   string          `gorm:"size:255;not null;index" json:"customer_email"`
	CashierID       *uuid.UUID      `gorm:"type:uuid;index" json:"cashier_id,omitempty"`
	TotalWithoutTax decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"total_without_tax"`
	TotalTax        decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"total_tax"`
	NetTotal        decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"net_total"`
	RoundedTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rounded_total"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount_paid"`
	BalanceReturned decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance_returned"`
	ChangeGiven     ChangeBreakdown `gorm:"type:text" json:"change_given"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`

	// Relationships
	Cashier *User          `gorm:"foreignKey:CashierID" json:"-"`
	Items   []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new purchase
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Purchase model
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseItem is a priced line of a Purchase. The purchase owns it; the product is only referenced.
type PurchaseItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Position      int             `gorm:"not null;default:0" json:"position"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TaxPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_percentage"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"purchase_price"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"tax_amount"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"total_price"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new purchase item
func (pi *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == uuid.Nil {
		pi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseItem model
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// ChangeBreakdown maps a denomination value to the number handed back.
// Stored as a JSON text column.
type ChangeBreakdown map[int64]int

func (c ChangeBreakdown) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[int64]int(c))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (c *ChangeBreakdown) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*c = ChangeBreakdown{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("change breakdown: unsupported column type")
	}
	out := map[int64]int{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*c = out
	return nil
}
