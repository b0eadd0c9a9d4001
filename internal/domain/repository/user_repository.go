package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/pkg/pagination"
)

// UserRepository defines the interface for staff user operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns staff ordered by name, filtered by name or email
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}
