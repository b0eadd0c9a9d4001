package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posbilling/internal/application/service"
	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/request"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/response"
	"github.com/sangkips/posbilling/pkg/pagination"
)

// PurchaseHandler handles purchase history HTTP requests
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// List handles listing purchases, newest first, optionally for one customer
// @Summary List Purchases
// @Tags purchases
// @Security BearerAuth
// @Produce json
// @Param email query string false "Customer email"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Success 200 {object} response.APIResponse
// @Router /purchases [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	var filter request.PurchaseFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.purchaseService.ListPurchases(c.Request.Context(), &repository.PurchaseFilterParams{
		Pagination:    pagination.NewParams(filter.Page, filter.PerPage),
		CustomerEmail: filter.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Purchases retrieved successfully", result)
}

// Get handles getting a purchase with its items
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase retrieved successfully", purchase)
}

// ResendInvoice queues the invoice email again. The body is optional.
func (h *PurchaseHandler) ResendInvoice(c *gin.Context) {
	id, ok := uuidParam(c, "id", "purchase")
	if !ok {
		return
	}

	var req request.ResendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	notification, err := h.purchaseService.ResendInvoice(c.Request.Context(), id, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, "Invoice queued for delivery", notification)
}

// InvoiceHistory lists the invoice deliveries for a purchase
func (h *PurchaseHandler) InvoiceHistory(c *gin.Context) {
	id, ok := uuidParam(c, "id", "purchase")
	if !ok {
		return
	}

	notifications, err := h.purchaseService.InvoiceHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice history retrieved successfully", notifications)
}
