package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posbilling/internal/application/service"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/request"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/response"
)

// TillHandler handles denomination HTTP requests
type TillHandler struct {
	tillService *service.TillService
}

// NewTillHandler creates a new till handler
func NewTillHandler(tillService *service.TillService) *TillHandler {
	return &TillHandler{tillService: tillService}
}

// List returns every denomination in the till, largest first
func (h *TillHandler) List(c *gin.Context) {
	denominations, err := h.tillService.ListDenominations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Denominations retrieved successfully", denominations)
}

// SetCount replaces the count held for a denomination, creating it if needed
func (h *TillHandler) SetCount(c *gin.Context) {
	value, ok := denominationParam(c)
	if !ok {
		return
	}

	var req request.SetDenominationCountRequest
	if !bindJSON(c, &req) {
		return
	}

	denomination, err := h.tillService.SetCount(c.Request.Context(), value, *req.Count)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Denomination updated successfully", denomination)
}

// Restock adds to the count held for a denomination
func (h *TillHandler) Restock(c *gin.Context) {
	value, ok := denominationParam(c)
	if !ok {
		return
	}

	var req request.RestockDenominationRequest
	if !bindJSON(c, &req) {
		return
	}

	denomination, err := h.tillService.Restock(c.Request.Context(), value, req.Count)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Denomination restocked successfully", denomination)
}

func denominationParam(c *gin.Context) (int64, bool) {
	value, err := strconv.ParseInt(c.Param("value"), 10, 64)
	if err != nil || value <= 0 {
		response.BadRequest(c, "Denomination value must be a positive integer")
		return 0, false
	}
	return value, true
}
