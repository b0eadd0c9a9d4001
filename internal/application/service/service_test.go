package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/enum"
	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/internal/infrastructure/database/dbtest"
	"github.com/sangkips/posbilling/internal/infrastructure/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/pagination"
	"github.com/sangkips/posbilling/pkg/printer"
	"github.com/sangkips/posbilling/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService(t *testing.T) {
	ctx := context.Background()
	svc := NewProductService(repository.NewProductRepository(dbtest.New(t)))

	p, err := svc.CreateProduct(ctx, &CreateProductInput{
		Code:            " milk 1l ",
		Name:            "Milk 1L",
		UnitPrice:       decimal.NewFromInt(60),
		TaxPercentage:   decimal.NewFromInt(5),
		AvailableStocks: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "MILK-1L", p.Code)

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Code: "MILK-1L", Name: "dup"})
	require.ErrorIs(t, err, apperror.NewConflictError("Product code already exists"))

	generated, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "Loose"})
	require.NoError(t, err)
	assert.Contains(t, generated.Code, "PROD-")

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Name: "Bad", TaxPercentage: decimal.NewFromInt(101)})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "tax_percentage", appErr.Errors[0].Field)

	price := decimal.NewFromInt(65)
	updated, err := svc.UpdateProduct(ctx, &UpdateProductInput{ID: p.ID, UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, updated.UnitPrice.Equal(price))

	taken := generated.Code
	_, err = svc.UpdateProduct(ctx, &UpdateProductInput{ID: p.ID, Code: &taken})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	page, err := svc.ListProducts(ctx, &domainRepo.ProductFilterParams{Pagination: pagination.NewParams(1, 10)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Pagination.Total)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProductByID(ctx, p.ID)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestTillService(t *testing.T) {
	ctx := context.Background()
	svc := NewTillService(repository.NewDenominationRepository(dbtest.New(t)), logger.Nop())

	d, err := svc.SetCount(ctx, 50, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, d.AvailableCount)

	d, err = svc.Restock(ctx, 50, 6)
	require.NoError(t, err)
	assert.Equal(t, 10, d.AvailableCount)

	_, err = svc.Restock(ctx, 20, 1)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	_, err = svc.SetCount(ctx, 0, 1)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	_, err = svc.SetCount(ctx, 5, -1)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	_, err = svc.Restock(ctx, 50, 0)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	till, err := svc.ListDenominations(ctx)
	require.NoError(t, err)
	require.Len(t, till, 1)
}

func TestPurchaseServiceResendInvoice(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	purchases := repository.NewPurchaseRepository(db)
	waker := &countingWaker{}
	svc := NewPurchaseService(purchases, repository.NewNotificationRepository(db), waker)

	p := &entity.Purchase{CustomerEmail: "a@example.com"}
	require.NoError(t, purchases.Create(ctx, p))

	n, err := svc.ResendInvoice(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", n.Recipient)

	n, err = svc.ResendInvoice(ctx, p.ID, "Other@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", n.Recipient)
	assert.EqualValues(t, 2, waker.calls.Load())

	history, err := svc.InvoiceHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.ResendInvoice(ctx, uuid.New(), "")
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	page, err := svc.ListPurchases(ctx, &domainRepo.PurchaseFilterParams{
		Pagination:    pagination.NewParams(1, 10),
		CustomerEmail: " A@example.com",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Pagination.Total)

	got, err := svc.GetPurchase(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	users := repository.NewUserRepository(dbtest.New(t))
	jwt := utils.NewJWTManager("secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(users, jwt)

	hash, err := utils.HashPassword("s3cret!")
	require.NoError(t, err)
	user := &entity.User{Name: "Ann", Email: "ann@example.com", Password: hash, Role: enum.StaffRoleCashier, IsActive: true}
	require.NoError(t, users.Create(ctx, user))

	_, err = svc.Login(ctx, &LoginInput{Email: "ann@example.com", Password: "wrong"})
	require.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	out, err := svc.Login(ctx, &LoginInput{Email: "ANN@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	claims, err := jwt.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cashier", claims.Role)

	refreshed, err := svc.RefreshToken(ctx, out.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(ctx, out.AccessToken)
	require.ErrorIs(t, err, apperror.ErrInvalidToken)

	user.IsActive = false
	require.NoError(t, users.Update(ctx, user))
	_, err = svc.Login(ctx, &LoginInput{Email: "ann@example.com", Password: "s3cret!"})
	require.ErrorIs(t, err, apperror.ErrAccountDisabled)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(dbtest.New(t)))

	admin, err := svc.CreateUser(ctx, &CreateUserInput{Name: "Boss", Email: "boss@example.com", Password: "password1", Role: enum.StaffRoleAdmin})
	require.NoError(t, err)
	cashier, err := svc.CreateUser(ctx, &CreateUserInput{Name: "Cal", Email: "Cal@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, enum.StaffRoleCashier, cashier.Role)
	assert.Equal(t, "cal@example.com", cashier.Email)

	_, err = svc.CreateUser(ctx, &CreateUserInput{Name: "Dup", Email: "cal@example.com", Password: "password1"})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	disabled := false
	_, err = svc.UpdateUser(ctx, &UpdateUserInput{ActorID: admin.ID, UserID: admin.ID, IsActive: &disabled})
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	updated, err := svc.UpdateUser(ctx, &UpdateUserInput{ActorID: admin.ID, UserID: cashier.ID, IsActive: &disabled})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	page, err := svc.ListUsers(ctx, pagination.NewParams(1, 10), "cal")
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Pagination.Total)

	assert.Error(t, svc.DeleteUser(ctx, admin.ID, admin.ID))
	require.NoError(t, svc.DeleteUser(ctx, admin.ID, cashier.ID))
}

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(ctx context.Context, data []byte) error {
	p.jobs = append(p.jobs, data)
	return p.err
}
func (p *recordingPrinter) Close() error                         { return nil }
func (p *recordingPrinter) IsConnected(ctx context.Context) bool { return p.err == nil }

func TestPrinterService(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	products := repository.NewProductRepository(db)
	purchases := repository.NewPurchaseRepository(db)

	tea := &entity.Product{Code: "TEA", Name: "Tea", UnitPrice: decimal.NewFromInt(100), TaxPercentage: decimal.NewFromInt(10), AvailableStocks: 1}
	require.NoError(t, products.Create(ctx, tea))
	p := &entity.Purchase{
		CustomerEmail:   "a@example.com",
		TotalWithoutTax: decimal.NewFromInt(200),
		TotalTax:        decimal.NewFromInt(20),
		NetTotal:        decimal.NewFromInt(220),
		RoundedTotal:    decimal.NewFromInt(220),
		AmountPaid:      decimal.NewFromInt(300),
		BalanceReturned: decimal.NewFromInt(80),
		ChangeGiven:     entity.ChangeBreakdown{20: 1, 50: 1, 10: 1},
		Items: []entity.PurchaseItem{{
			ProductID: tea.ID, Quantity: 2, UnitPrice: tea.UnitPrice, TaxPercentage: tea.TaxPercentage,
			PurchasePrice: decimal.NewFromInt(200), TaxAmount: decimal.NewFromInt(20), TotalPrice: decimal.NewFromInt(220),
		}},
	}
	require.NoError(t, purchases.Create(ctx, p))

	dev := &recordingPrinter{}
	svc := NewPrinterService(dev, purchases, entity.ReceiptHeader{StoreName: "Corner Shop"}, printer.Config{Type: "network", Width: 32}, logger.Nop())

	receipt, err := svc.PrintPurchaseReceipt(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, dev.jobs, 1)
	assert.Equal(t, "Tea", receipt.Items[0].Name)
	assert.Equal(t, []entity.ReceiptChange{{Value: 50, Count: 1}, {Value: 20, Count: 1}, {Value: 10, Count: 1}}, receipt.Change)
	assert.True(t, bytes.Contains(dev.jobs[0], []byte("Corner Shop")))
	assert.True(t, bytes.Contains(dev.jobs[0], []byte("220.00")))

	status := svc.GetStatus(ctx)
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)

	dev.err = errors.New("paper out")
	receipt, err = svc.PrintPurchaseReceipt(ctx, p.ID)
	require.Error(t, err)
	assert.NotNil(t, receipt)

	_, err = svc.PrintPurchaseReceipt(ctx, uuid.New())
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	till := repository.NewDenominationRepository(db)
	require.NoError(t, till.EnsureDefaults(ctx, []int64{500, 50, 1}, 2))

	svc := NewDashboardService(repository.NewPurchaseRepository(db), till)
	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.LastWeek, 7)
	assert.Zero(t, stats.Today.Purchases)
	assert.Equal(t, "1102", stats.TillValue.String())
}
