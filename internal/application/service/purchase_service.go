package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/pagination"
	"github.com/sangkips/posbilling/pkg/utils"
)

// PurchaseService handles reads of completed sales and their invoices
type PurchaseService struct {
	purchaseRepo     repository.PurchaseRepository
	notificationRepo repository.NotificationRepository
	waker            InvoiceWaker
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	notificationRepo repository.NotificationRepository,
	waker InvoiceWaker,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:     purchaseRepo,
		notificationRepo: notificationRepo,
		waker:            waker,
	}
}

// GetPurchase retrieves a purchase with its items and their products
func (s *PurchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	purchase, err := s.purchaseRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	return purchase, nil
}

// ListPurchases lists purchases newest first, optionally for one customer
func (s *PurchaseService) ListPurchases(ctx context.Context, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	params.CustomerEmail = utils.NormalizeEmail(params.CustomerEmail)

	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(purchases, params.Pagination, total), nil
}

// ResendInvoice queues another invoice email for a purchase
func (s *PurchaseService) ResendInvoice(ctx context.Context, id uuid.UUID, recipient string) (*entity.InvoiceNotification, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}

	to := utils.NormalizeEmail(recipient)
	if to == "" {
		to = purchase.CustomerEmail
	}

	notification := entity.NewInvoiceNotification(purchase.ID, to, time.Now())
	if err := s.notificationRepo.Enqueue(ctx, notification); err != nil {
		return nil, err
	}

	if s.waker != nil {
		s.waker.Wake()
	}
	return notification, nil
}

// InvoiceHistory lists every invoice delivery queued for a purchase
func (s *PurchaseService) InvoiceHistory(ctx context.Context, id uuid.UUID) ([]entity.InvoiceNotification, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}

	notifications, err := s.notificationRepo.ListByPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []entity.InvoiceNotification{}
	}
	return notifications, nil
}
