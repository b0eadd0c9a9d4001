package repository

import "context"

// TxRepositories are the repositories bound to a single open transaction.
type TxRepositories struct {
	Products      ProductRepository
	Purchases     PurchaseRepository
	Denominations DenominationRepository
	Notifications NotificationRepository
}

// Transactor owns the transaction boundary. WithinTx begins a transaction,
// commits when fn returns nil and rolls back on error or panic.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
