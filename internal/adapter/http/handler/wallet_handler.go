package handler

import (
	"context"

	"gmail-marketplace/internal/adapter/http/dto"
	"gmail-marketplace/internal/adapter/http/middleware"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"
	"gmail-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderWatcher starts and stops background gateway polling for an order.
// Satisfied by *service.Watcher.
type OrderWatcher interface {
	Watch(ctx context.Context, orderID string)
	Stop(orderID string)
}

// WalletHandler handles wallet and top-up order endpoints.
type WalletHandler struct {
	reconcileSvc ports.ReconcileService
	walletSvc    ports.WalletService
	watcher      OrderWatcher // nil = background polling disabled
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reconcileSvc ports.ReconcileService, walletSvc ports.WalletService, watcher OrderWatcher) *WalletHandler {
	return &WalletHandler{
		reconcileSvc: reconcileSvc,
		walletSvc:    walletSvc,
		watcher:      watcher,
	}
}

// userIDFrom reads the authenticated end-user identity set by InternalAuth.
func userIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CreateOrder handles POST /api/v1/wallet/orders.
func (h *WalletHandler) CreateOrder(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.reconcileSvc.CreateOrder(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The poller outlives this request; detach from its cancellation.
	if h.watcher != nil {
		h.watcher.Watch(context.WithoutCancel(c.Request.Context()), order.OrderID)
	}

	response.Created(c, dto.OrderResponseFrom(order))
}

// GetOrder handles GET /api/v1/wallet/orders/:id.
func (h *WalletHandler) GetOrder(c *gin.Context) {
	if _, ok := userIDFrom(c); !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	order, err := h.reconcileSvc.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.OrderResponseFrom(order))
}

// CancelOrder handles DELETE /api/v1/wallet/orders/:id.
func (h *WalletHandler) CancelOrder(c *gin.Context) {
	if _, ok := userIDFrom(c); !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	orderID := c.Param("id")
	if err := h.reconcileSvc.Cancel(c.Request.Context(), orderID); err != nil {
		response.Error(c, err)
		return
	}

	if h.watcher != nil {
		h.watcher.Stop(orderID)
	}

	order, err := h.reconcileSvc.Status(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.OrderResponseFrom(order))
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.walletSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance})
}

// ListTransactions handles GET /api/v1/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txns, err := h.walletSvc.History(c.Request.Context(), userID, queryInt(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, dto.TransactionResponseFrom(&txns[i]))
	}
	response.OK(c, out)
}
