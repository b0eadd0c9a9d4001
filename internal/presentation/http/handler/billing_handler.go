package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/posbilling/internal/application/service"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/request"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/response"
)

// BillingHandler handles pricing and checkout at the counter
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Quote handles pricing a basket without selling it
// @Summary Quote a basket
// @Description Price the lines and, when amount_paid is given, preview the change the till would return
// @Tags billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.QuoteRequest true "Basket"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /billing/quote [post]
func (h *BillingHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.billingService.Quote(c.Request.Context(), &service.QuoteInput{
		Lines:      lineInputs(req.Lines),
		AmountPaid: req.AmountPaid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill computed successfully", gin.H{
		"bill":   output.Bill,
		"change": output.Change,
	})
}

// Checkout handles completing a sale
// @Summary Checkout
// @Description Sell the basket, pay out change from the till and queue the invoice email
// @Tags billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Client generated key"
// @Param request body request.CheckoutRequest true "Sale"
// @Success 201 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	var req request.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.billingService.Checkout(c.Request.Context(), &service.CheckoutInput{
		CashierID:     GetUserID(c),
		CustomerEmail: req.CustomerEmail,
		AmountPaid:    req.AmountPaid,
		Lines:         lineInputs(req.Lines),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Purchase completed successfully", gin.H{
		"purchase": output.Purchase,
		"bill":     output.Bill,
		"change":   output.Change,
	})
}

func lineInputs(lines []request.BillLineRequest) []service.LineInput {
	inputs := make([]service.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = service.LineInput{ProductCode: l.ProductCode, Quantity: l.Quantity}
	}
	return inputs
}
