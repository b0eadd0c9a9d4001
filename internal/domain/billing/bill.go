// Package billing holds the pure pricing and change-making rules of the till.
// Nothing in here touches storage; callers pass snapshots in and persist results.
package billing

import (
	"github.com/shopspring/decimal"
	"github.com/sangkips/posbilling/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest money value a numeric(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Line is one (product, quantity) pair selected at the counter.
type Line struct {
	Product  *entity.Product
	Quantity int
}

// LineItem is a priced Line.
type LineItem struct {
	Product       *entity.Product `json:"product"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Bill is the itemized result of ComputeBill.
type Bill struct {
	Items           []LineItem      `json:"items"`
	TotalWithoutTax decimal.Decimal `json:"total_without_tax"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	NetTotal        decimal.Decimal `json:"net_total"`
	RoundedTotal    decimal.Decimal `json:"rounded_total"`
}

// PriceLine computes purchase price, tax and total for a single line.
func PriceLine(l Line) LineItem {
	purchasePrice := l.Product.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	taxAmount := purchasePrice.Mul(l.Product.TaxPercentage).Div(hundred)

	return LineItem{
		Product:       l.Product,
		Quantity:      l.Quantity,
		PurchasePrice: purchasePrice,
		TaxAmount:     taxAmount,
		TotalPrice:    purchasePrice.Add(taxAmount),
	}
}

// ComputeBill prices every line in order and accumulates the totals.
// The rounded total is the net total floored to a whole currency unit;
// the shop never charges or owes fractions.
func ComputeBill(lines []Line) Bill {
	bill := Bill{
		Items:           make([]LineItem, 0, len(lines)),
		TotalWithoutTax: decimal.Zero,
		TotalTax:        decimal.Zero,
	}

	for _, l := range lines {
		item := PriceLine(l)
		bill.Items = append(bill.Items, item)
		bill.TotalWithoutTax = bill.TotalWithoutTax.Add(item.PurchasePrice)
		bill.TotalTax = bill.TotalTax.Add(item.TaxAmount)
	}

	bill.NetTotal = bill.TotalWithoutTax.Add(bill.TotalTax)
	bill.RoundedTotal = bill.NetTotal.Floor()
	return bill
}
