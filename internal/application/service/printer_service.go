package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/pkg/apperror"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/printer"
	"github.com/sangkips/posbilling/pkg/utils"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer      printer.Printer
	purchaseRepo repository.PurchaseRepository
	header       entity.ReceiptHeader
	printerType  string
	width        int
	log          *logger.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	purchaseRepo repository.PurchaseRepository,
	header entity.ReceiptHeader,
	cfg printer.Config,
	log *logger.Logger,
) *PrinterService {
	if log == nil {
		log = logger.Nop()
	}
	return &PrinterService{
		printer:      p,
		purchaseRepo: purchaseRepo,
		header:       header,
		printerType:  cfg.Type,
		width:        cfg.Width,
		log:          log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printerType,
	}
}

// PrintPurchaseReceipt fetches a purchase (with items) and prints its receipt.
// The receipt is returned even when printing fails so the till can show it.
func (s *PrinterService) PrintPurchaseReceipt(ctx context.Context, purchaseID uuid.UUID) (*entity.Receipt, error) {
	purchase, err := s.purchaseRepo.GetWithItems(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}

	receipt := BuildReceipt(s.header, purchase)
	data := FormatReceipt(receipt, s.width)
	if err := s.printer.Print(ctx, data); err != nil {
		s.log.Error(s.log.WithField(ctx, "purchase_id", purchaseID.String()), "printer error", err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// BuildReceipt composes the printable receipt for a purchase.
func BuildReceipt(header entity.ReceiptHeader, p *entity.Purchase) *entity.Receipt {
	receipt := &entity.Receipt{
		Header:          header,
		ReceiptNo:       utils.ReceiptNo(p.ID, p.CreatedAt),
		Date:            p.CreatedAt.Format("2006-01-02 15:04"),
		Customer:        p.CustomerEmail,
		Items:           make([]entity.ReceiptItem, 0, len(p.Items)),
		TotalWithoutTax: p.TotalWithoutTax,
		TotalTax:        p.TotalTax,
		NetTotal:        p.NetTotal,
		RoundedTotal:    p.RoundedTotal,
		Paid:            p.AmountPaid,
		Balance:         p.BalanceReturned,
	}

	for _, item := range p.Items {
		name := "Product"
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Tax:       item.TaxAmount,
			Total:     item.TotalPrice,
		})
	}

	values := make([]int64, 0, len(p.ChangeGiven))
	for value := range p.ChangeGiven {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] > values[j] })
	for _, value := range values {
		receipt.Change = append(receipt.Change, entity.ReceiptChange{Value: value, Count: p.ChangeGiven[value]})
	}

	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.Text("Tax ID: " + r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).Rule('-')

	doc.Row("Receipt:", r.ReceiptNo).
		Row("Date:", r.Date)
	if r.Customer != "" {
		doc.Row("Customer:", r.Customer)
	}

	doc.Rule('-')

	// Items
	for _, item := range r.Items {
		doc.Row(fmt.Sprintf("%dx %s", item.Quantity, item.Name), item.Total.StringFixed(2))
		doc.Text(fmt.Sprintf("  @ %s  tax %s", item.UnitPrice.StringFixed(2), item.Tax.StringFixed(2)))
	}

	doc.Rule('-')

	// Totals
	doc.Row("Subtotal:", r.TotalWithoutTax.StringFixed(2)).
		Row("Tax:", r.TotalTax.StringFixed(2)).
		Row("Net total:", r.NetTotal.StringFixed(2)).
		SetBold(true).
		Row("TOTAL:", r.RoundedTotal.StringFixed(2)).
		SetBold(false).
		Row("Paid:", r.Paid.StringFixed(2)).
		Row("Balance:", r.Balance.StringFixed(2))

	if len(r.Change) > 0 {
		doc.Rule('-').Text("Change given")
		for _, c := range r.Change {
			doc.Row("  "+strconv.FormatInt(c.Value, 10), "x "+strconv.Itoa(c.Count))
		}
	}

	doc.Rule('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		Feed(1).
		Text("Thank you for your business!").
		SetAlign(printer.AlignLeft).
		Cut()

	return doc.Bytes()
}
