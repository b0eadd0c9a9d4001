package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/posbilling/internal/application/service"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// PrintPurchase prints the receipt for a purchase.
func (h *PrinterHandler) PrintPurchase(c *gin.Context) {
	id, ok := uuidParam(c, "id", "purchase")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintPurchaseReceipt(c.Request.Context(), id)
	if err != nil {
		// The receipt was built but the printer failed; the till can still show it
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{
		"receipt": receipt,
	})
}
