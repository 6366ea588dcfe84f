package handler

import (
	"gmail-marketplace/internal/adapter/http/dto"
	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"
	"gmail-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// SellerHandler handles seller-facing endpoints.
type SellerHandler struct {
	commerceSvc ports.CommerceService
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(commerceSvc ports.CommerceService) *SellerHandler {
	return &SellerHandler{commerceSvc: commerceSvc}
}

// Register handles POST /api/v1/seller/register.
func (h *SellerHandler) Register(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SellerRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	seller, err := h.commerceSvc.RegisterSeller(c.Request.Context(), userID, req.UPIAddress)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.SellerResponseFrom(seller))
}

// SubmitBatch handles POST /api/v1/seller/batches.
func (h *SellerHandler) SubmitBatch(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	creds := make([]domain.Credential, 0, len(req.Accounts))
	for _, a := range req.Accounts {
		creds = append(creds, domain.Credential{Email: a.Email, Password: a.Password})
	}

	batchID, err := h.commerceSvc.SubmitBatch(c.Request.Context(), userID, creds)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.BatchResponse{BatchID: batchID.String(), Count: len(creds)})
}

// Overview handles GET /api/v1/seller/stats.
func (h *SellerHandler) Overview(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	seller, stats, err := h.commerceSvc.SellerOverview(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SellerOverviewResponse{
		Seller:    dto.SellerResponseFrom(seller),
		Pending:   stats.Pending,
		Available: stats.Available,
		Sold:      stats.Sold,
	})
}

// RequestWithdrawal handles POST /api/v1/seller/withdrawals.
func (h *SellerHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	w, err := h.commerceSvc.RequestWithdrawal(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.WithdrawalResponseFrom(w))
}
