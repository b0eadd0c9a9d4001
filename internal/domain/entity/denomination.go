package entity

import "time"

// Denomination is one slot of the till: a note or coin value and how many are on hand
type Denomination struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Value          int64     `gorm:"uniqueIndex;not null;check:value > 0" json:"value"`
	AvailableCount int       `gorm:"not null;default:0;check:available_count >= 0" json:"available_count"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the table name for the Denomination model
func (Denomination) TableName() string {
	return "shop_denominations"
}
