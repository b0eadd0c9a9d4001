package repository

import (
	"context"

	"github.com/sangkips/posbilling/internal/domain/entity"
)

// DenominationRepository defines the interface for till operations
type DenominationRepository interface {
	// List returns the till ordered by value, highest first
	List(ctx context.Context) ([]entity.Denomination, error)
	// ListForUpdate is List with the rows locked until the surrounding transaction ends
	ListForUpdate(ctx context.Context) ([]entity.Denomination, error)
	GetByValue(ctx context.Context, value int64) (*entity.Denomination, error)
	// Upsert sets the count for a value, creating the slot if needed
	Upsert(ctx context.Context, value int64, count int) (*entity.Denomination, error)
	// Restock adds count to an existing slot
	Restock(ctx context.Context, value int64, count int) (*entity.Denomination, error)
	// Deduct removes the allocation from the till. It fails without partial
	// effect when any slot has fewer notes than asked for.
	Deduct(ctx context.Context, allocation map[int64]int) error
	// EnsureDefaults creates missing slots for values with the given count
	EnsureDefaults(ctx context.Context, values []int64, count int) error
}
