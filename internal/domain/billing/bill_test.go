package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/posbilling/internal/domain/entity"
)

func product(code, price, tax string) *entity.Product {
	return &entity.Product{
		Code:            code,
		Name:            code,
		UnitPrice:       decimal.RequireFromString(price),
		TaxPercentage:   decimal.RequireFromString(tax),
		AvailableStocks: 100,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeBillSingleLine(t *testing.T) {
	bill := ComputeBill([]Line{{Product: product("P1", "100", "10"), Quantity: 2}})

	require.Len(t, bill.Items, 1)
	assertDecimal(t, "200", bill.Items[0].PurchasePrice)
	assertDecimal(t, "20", bill.Items[0].TaxAmount)
	assertDecimal(t, "220", bill.Items[0].TotalPrice)

	assertDecimal(t, "200", bill.TotalWithoutTax)
	assertDecimal(t, "20", bill.TotalTax)
	assertDecimal(t, "220", bill.NetTotal)
	assertDecimal(t, "220", bill.RoundedTotal)
}

func TestComputeBillEmpty(t *testing.T) {
	bill := ComputeBill(nil)

	assert.Empty(t, bill.Items)
	assert.True(t, bill.TotalWithoutTax.IsZero())
	assert.True(t, bill.TotalTax.IsZero())
	assert.True(t, bill.NetTotal.IsZero())
	assert.True(t, bill.RoundedTotal.IsZero())
}

func TestComputeBillFloorsNetTotal(t *testing.T) {
	tests := []struct {
		name      string
		lines     []Line
		net       string
		rounded   string
		withoutTx string
		tax       string
	}{
		{
			name:      "fraction dropped",
			lines:     []Line{{Product: product("A", "10.99", "5"), Quantity: 3}},
			withoutTx: "32.97",
			tax:       "1.6485",
			net:       "34.6185",
			rounded:   "34",
		},
		{
			name: "just under a whole unit",
			lines: []Line{
				{Product: product("A", "0.99", "0"), Quantity: 1},
				{Product: product("B", "1", "0"), Quantity: 1},
			},
			withoutTx: "1.99",
			tax:       "0",
			net:       "1.99",
			rounded:   "1",
		},
		{
			name: "mixed tax rates",
			lines: []Line{
				{Product: product("A", "49.50", "18"), Quantity: 2},
				{Product: product("B", "12", "0"), Quantity: 5},
				{Product: product("C", "7.25", "12.5"), Quantity: 4},
			},
			withoutTx: "188",
			tax:       "21.445",
			net:       "209.445",
			rounded:   "209",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bill := ComputeBill(tc.lines)
			assertDecimal(t, tc.withoutTx, bill.TotalWithoutTax)
			assertDecimal(t, tc.tax, bill.TotalTax)
			assertDecimal(t, tc.net, bill.NetTotal)
			assertDecimal(t, tc.rounded, bill.RoundedTotal)

			assert.True(t, bill.NetTotal.Equal(bill.TotalWithoutTax.Add(bill.TotalTax)))
			assert.True(t, bill.RoundedTotal.LessThanOrEqual(bill.NetTotal))
			assert.True(t, bill.NetTotal.LessThan(bill.RoundedTotal.Add(decimal.NewFromInt(1))))
		})
	}
}

func TestComputeBillPreservesOrder(t *testing.T) {
	codes := []string{"Z", "A", "M", "B"}
	lines := make([]Line, 0, len(codes))
	for i, code := range codes {
		lines = append(lines, Line{Product: product(code, "1", "0"), Quantity: i + 1})
	}

	bill := ComputeBill(lines)

	require.Len(t, bill.Items, len(codes))
	for i, code := range codes {
		assert.Equal(t, code, bill.Items[i].Product.Code)
		assert.Equal(t, i+1, bill.Items[i].Quantity)
	}
}

func TestComputeBillDoesNotMutateProducts(t *testing.T) {
	p := product("P1", "3.30", "7")
	before := *p

	ComputeBill([]Line{{Product: p, Quantity: 9}})

	assert.Equal(t, before.AvailableStocks, p.AvailableStocks)
	assert.True(t, before.UnitPrice.Equal(p.UnitPrice))
	assert.True(t, before.TaxPercentage.Equal(p.TaxPercentage))
}
