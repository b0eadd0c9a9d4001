package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/pkg/pagination"
)

// ProductFilterParams holds the filter parameters for listing products
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	InStock    bool
	SortBy     string
	SortOrder  string
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetByCodes returns the products matching codes, in no particular order
	GetByCodes(ctx context.Context, codes []string) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// AtomicDecrementBatch decrements stock for every product or none.
	// Returns the IDs that did not have enough stock.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error)
}
