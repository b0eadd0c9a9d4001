package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Code            string          `json:"code" binding:"omitempty,max=100"`
	Name            string          `json:"name" binding:"required,min=2,max=255"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"dgte0,dmoney"`
	TaxPercentage   decimal.Decimal `json:"tax_percentage" binding:"dgte0,dlte100"`
	AvailableStocks int             `json:"available_stocks" binding:"min=0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Code            *string          `json:"code" binding:"omitempty,min=1,max=100"`
	Name            *string          `json:"name" binding:"omitempty,min=2,max=255"`
	UnitPrice       *decimal.Decimal `json:"unit_price" binding:"omitempty,dgte0,dmoney"`
	TaxPercentage   *decimal.Decimal `json:"tax_percentage" binding:"omitempty,dgte0,dlte100"`
	AvailableStocks *int             `json:"available_stocks" binding:"omitempty,min=0"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	InStock   bool   `form:"in_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
