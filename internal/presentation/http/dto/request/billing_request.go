package request

import "github.com/shopspring/decimal"

// BillLineRequest is one basket line
type BillLineRequest struct {
	ProductCode string `json:"product_code" binding:"required,max=100"`
	Quantity    int    `json:"quantity" binding:"gt=0"`
}

// QuoteRequest prices a basket. AmountPaid is optional and only previews change.
type QuoteRequest struct {
	Lines      []BillLineRequest `json:"lines" binding:"required,min=1,dive"`
	AmountPaid *decimal.Decimal  `json:"amount_paid" binding:"omitempty,dgte0,dmoney"`
}

// CheckoutRequest represents a checkout request
type CheckoutRequest struct {
	CustomerEmail string            `json:"customer_email" binding:"required,email"`
	AmountPaid    decimal.Decimal   `json:"amount_paid" binding:"dgte0,dmoney"`
	Lines         []BillLineRequest `json:"lines" binding:"required,min=1,dive"`
}
