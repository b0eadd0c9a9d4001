package request

// PurchaseFilterRequest represents purchase filter parameters
type PurchaseFilterRequest struct {
	Email   string `form:"email"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// ResendInvoiceRequest optionally redirects the invoice to another address
type ResendInvoiceRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}
