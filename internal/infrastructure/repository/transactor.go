package repository

import (
	"context"

	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"gorm.io/gorm"
)

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor over db
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &gormTransactor{db: db}
}

// WithinTx runs fn inside a transaction with repositories bound to it.
// The transaction is committed when fn returns nil and rolled back on error or panic.
func (t *gormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domainRepo.TxRepositories) error) error {
	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	repos := domainRepo.TxRepositories{
		Products:      NewProductRepository(tx),
		Purchases:     NewPurchaseRepository(tx),
		Denominations: NewDenominationRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}

	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
