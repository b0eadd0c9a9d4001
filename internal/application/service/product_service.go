package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/pagination"
	"github.com/sangkips/posbilling/pkg/utils"
	"github.com/shopspring/decimal"
)

var maxTaxPercentage = decimal.NewFromInt(100)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Code            string
	Name            string
	UnitPrice       decimal.Decimal
	TaxPercentage   decimal.Decimal
	AvailableStocks int
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if err := validatePricing(input.UnitPrice, input.TaxPercentage, input.AvailableStocks); err != nil {
		return nil, err
	}

	// Auto-generate code if not provided
	code := utils.NormalizeCode(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existing, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	product := &entity.Product{
		Code:            code,
		Name:            input.Name,
		UnitPrice:       input.UnitPrice,
		TaxPercentage:   input.TaxPercentage,
		AvailableStocks: input.AvailableStocks,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(products, params.Pagination, total), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID              uuid.UUID
	Code            *string
	Name            *string
	UnitPrice       *decimal.Decimal
	TaxPercentage   *decimal.Decimal
	AvailableStocks *int
}

// UpdateProduct updates a product. Past purchases keep the price they were sold at.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProductByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		code := utils.NormalizeCode(*input.Code)
		if code == "" {
			return nil, apperror.NewBadRequestError("code must not be empty")
		}
		if code != product.Code {
			existing, err := s.productRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != product.ID {
				return nil, apperror.NewConflictError("Product code already exists")
			}
			product.Code = code
		}
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.UnitPrice != nil {
		product.UnitPrice = *input.UnitPrice
	}
	if input.TaxPercentage != nil {
		product.TaxPercentage = *input.TaxPercentage
	}
	if input.AvailableStocks != nil {
		product.AvailableStocks = *input.AvailableStocks
	}

	if err := validatePricing(product.UnitPrice, product.TaxPercentage, product.AvailableStocks); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func validatePricing(unitPrice, taxPercentage decimal.Decimal, stock int) error {
	var fields []apperror.FieldError
	if unitPrice.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "unit_price", Message: "must not be negative"})
	}
	if taxPercentage.IsNegative() || taxPercentage.GreaterThan(maxTaxPercentage) {
		fields = append(fields, apperror.FieldError{Field: "tax_percentage", Message: "must be between 0 and 100"})
	}
	if stock < 0 {
		fields = append(fields, apperror.FieldError{Field: "available_stocks", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}
