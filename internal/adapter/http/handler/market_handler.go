package handler

import (
	"strconv"

	"gmail-marketplace/internal/adapter/http/dto"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"
	"gmail-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// MarketHandler handles buyer-facing marketplace endpoints.
type MarketHandler struct {
	commerceSvc ports.CommerceService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(commerceSvc ports.CommerceService) *MarketHandler {
	return &MarketHandler{commerceSvc: commerceSvc}
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// RegisterUser handles POST /api/v1/users/register. Idempotent: an
// existing user gets its profile refreshed.
func (h *MarketHandler) RegisterUser(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.commerceSvc.RegisterUser(c.Request.Context(), userID, req.Username, req.FullName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, user)
}

// GetStock handles GET /api/v1/market/stock.
func (h *MarketHandler) GetStock(c *gin.Context) {
	count, err := h.commerceSvc.Stock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StockResponse{Available: count})
}

// Purchase handles POST /api/v1/market/purchase.
func (h *MarketHandler) Purchase(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.commerceSvc.Purchase(c.Request.Context(), userID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PurchaseResponseFrom(result))
}

// ListPurchases handles GET /api/v1/market/purchases.
func (h *MarketHandler) ListPurchases(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	items, err := h.commerceSvc.Purchases(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PurchaseHistoryFrom(items))
}
