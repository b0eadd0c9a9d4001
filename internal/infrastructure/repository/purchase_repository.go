package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) domainRepo.PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create inserts the purchase and its items. Products referenced by the
// items are never written through this path.
func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(purchase).Error; err != nil {
			return err
		}
		if len(purchase.Items) == 0 {
			return nil
		}
		for i := range purchase.Items {
			purchase.Items[i].PurchaseID = purchase.ID
		}
		return tx.Omit(clause.Associations).Create(&purchase.Items).Error
	})
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) List(ctx context.Context, params *domainRepo.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Purchase{})

	if params.CustomerEmail != "" {
		query = query.Where("customer_email = ?", params.CustomerEmail)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&purchases).Error

	return purchases, total, err
}

// Delete removes a purchase; its items go with it.
func (r *purchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).Delete(&entity.PurchaseItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Purchase{}, "id = ?", id).Error
	})
}

func (r *purchaseRepository) Totals(ctx context.Context, from, to time.Time) (*domainRepo.SalesTotals, error) {
	var row struct {
		Purchases       int64
		Revenue         decimal.NullDecimal
		Tax             decimal.NullDecimal
		BalanceReturned decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&entity.Purchase{}).
		Select("COUNT(*) AS purchases, SUM(rounded_total) AS revenue, SUM(total_tax) AS tax, SUM(balance_returned) AS balance_returned").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domainRepo.SalesTotals{
		Purchases:       row.Purchases,
		Revenue:         row.Revenue.Decimal,
		Tax:             row.Tax.Decimal,
		BalanceReturned: row.BalanceReturned.Decimal,
	}, nil
}
