package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the shop header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ReceiptChange is one row of the change breakdown.
type ReceiptChange struct {
	Value int64 `json:"value"`
	Count int   `json:"count"`
}

// Receipt is a value object composed from a Purchase at print time. It is not persisted.
type Receipt struct {
	Header          ReceiptHeader   `json:"header"`
	ReceiptNo       string          `json:"receipt_no"`
	Date            string          `json:"date"`
	Customer        string          `json:"customer,omitempty"`
	Items           []ReceiptItem   `json:"items"`
	TotalWithoutTax decimal.Decimal `json:"total_without_tax"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	NetTotal        decimal.Decimal `json:"net_total"`
	RoundedTotal    decimal.Decimal `json:"rounded_total"`
	Paid            decimal.Decimal `json:"paid"`
	Balance         decimal.Decimal `json:"balance"`
	Change          []ReceiptChange `json:"change,omitempty"`
}
