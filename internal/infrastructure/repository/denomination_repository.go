package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sangkips/posbilling/internal/domain/entity"
	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type denominationRepository struct {
	db *gorm.DB
}

// NewDenominationRepository creates a new till repository
func NewDenominationRepository(db *gorm.DB) domainRepo.DenominationRepository {
	return &denominationRepository{db: db}
}

func (r *denominationRepository) List(ctx context.Context) ([]entity.Denomination, error) {
	var denominations []entity.Denomination
	err := r.db.WithContext(ctx).
		Order("value DESC").
		Find(&denominations).Error
	return denominations, err
}

// ListForUpdate locks every till row (SELECT ... FOR UPDATE) in value order so
// concurrent checkouts queue behind each other instead of overdrawing a slot.
func (r *denominationRepository) ListForUpdate(ctx context.Context) ([]entity.Denomination, error) {
	var denominations []entity.Denomination
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("value DESC").
		Find(&denominations).Error
	return denominations, err
}

func (r *denominationRepository) GetByValue(ctx context.Context, value int64) (*entity.Denomination, error) {
	var denomination entity.Denomination
	err := r.db.WithContext(ctx).First(&denomination, "value = ?", value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &denomination, err
}

func (r *denominationRepository) Upsert(ctx context.Context, value int64, count int) (*entity.Denomination, error) {
	denomination := entity.Denomination{Value: value, AvailableCount: count}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "value"}},
			DoUpdates: clause.AssignmentColumns([]string{"available_count", "updated_at"}),
		}).
		Create(&denomination).Error
	if err != nil {
		return nil, err
	}
	return r.GetByValue(ctx, value)
}

func (r *denominationRepository) Restock(ctx context.Context, value int64, count int) (*entity.Denomination, error) {
	result := r.db.WithContext(ctx).Model(&entity.Denomination{}).
		Where("value = ?", value).
		Update("available_count", gorm.Expr("available_count + ?", count))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByValue(ctx, value)
}

// Deduct applies the allocation with one conditional update per value:
// UPDATE shop_denominations SET available_count = available_count - n WHERE value = v AND available_count >= n
func (r *denominationRepository) Deduct(ctx context.Context, allocation map[int64]int) error {
	if len(allocation) == 0 {
		return nil
	}

	values := make([]int64, 0, len(allocation))
	for value := range allocation {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] > values[j] })

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, value := range values {
			count := allocation[value]
			if count <= 0 {
				continue
			}
			result := tx.Model(&entity.Denomination{}).
				Where("value = ? AND available_count >= ?", value, count).
				Update("available_count", gorm.Expr("available_count - ?", count))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("deduct %d x %d: %w", count, value, ErrTillShort)
			}
		}
		return nil
	})
}

func (r *denominationRepository) EnsureDefaults(ctx context.Context, values []int64, count int) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]entity.Denomination, 0, len(values))
	for _, v := range values {
		rows = append(rows, entity.Denomination{Value: v, AvailableCount: count})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
