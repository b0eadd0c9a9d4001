package service

import (
	"context"

	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/logger"
)

// TillService manages the notes and coins held in the till
type TillService struct {
	denominationRepo repository.DenominationRepository
	log              *logger.Logger
}

// NewTillService creates a new till service
func NewTillService(denominationRepo repository.DenominationRepository, log *logger.Logger) *TillService {
	if log == nil {
		log = logger.Nop()
	}
	return &TillService{denominationRepo: denominationRepo, log: log}
}

// ListDenominations returns the till, highest value first
func (s *TillService) ListDenominations(ctx context.Context) ([]entity.Denomination, error) {
	denominations, err := s.denominationRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if denominations == nil {
		denominations = []entity.Denomination{}
	}
	return denominations, nil
}

// SetCount replaces the count held for value, adding the slot if it is new
func (s *TillService) SetCount(ctx context.Context, value int64, count int) (*entity.Denomination, error) {
	if value <= 0 {
		return nil, apperror.NewBadRequestError("denomination value must be positive")
	}
	if count < 0 {
		return nil, apperror.NewBadRequestError("available_count must not be negative")
	}

	d, err := s.denominationRepo.Upsert(ctx, value, count)
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{"value": value, "count": count}), "till count set")
	return d, nil
}

// Restock adds count notes of value to an existing slot
func (s *TillService) Restock(ctx context.Context, value int64, count int) (*entity.Denomination, error) {
	if count <= 0 {
		return nil, apperror.NewBadRequestError("count must be greater than zero")
	}

	d, err := s.denominationRepo.Restock(ctx, value, count)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperror.NewNotFoundError("Denomination")
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{"value": value, "added": count}), "till restocked")
	return d, nil
}
