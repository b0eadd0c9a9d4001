package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/pkg/pagination"
	"github.com/shopspring/decimal"
)

// PurchaseFilterParams holds the filter parameters for listing purchases
type PurchaseFilterParams struct {
	Pagination    *pagination.PaginationParams
	CustomerEmail string
}

// SalesTotals aggregates purchases over a period
type SalesTotals struct {
	Purchases       int64           `json:"purchases"`
	Revenue         decimal.Decimal `json:"revenue"`
	Tax             decimal.Decimal `json:"tax"`
	BalanceReturned decimal.Decimal `json:"balance_returned"`
}

// PurchaseRepository defines the interface for purchase data operations
type PurchaseRepository interface {
	// Create stores the purchase together with its items
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
	// GetWithItems loads the purchase with items ordered as billed and their products
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
	// List returns purchases newest first
	List(ctx context.Context, params *PurchaseFilterParams) ([]entity.Purchase, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Totals sums purchases created in [from, to)
	Totals(ctx context.Context, from, to time.Time) (*SalesTotals, error)
}
