package handler

import (
	"net/http"
	"strconv"

	"gmail-marketplace/internal/adapter/http/dto"
	"gmail-marketplace/internal/adapter/http/middleware"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"
	"gmail-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles operator endpoints: login, approval queues,
// moderation and reporting.
type AdminHandler struct {
	authSvc     ports.AuthService
	approvalSvc ports.ApprovalService
	statsSvc    ports.StatsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authSvc ports.AuthService, approvalSvc ports.ApprovalService, statsSvc ports.StatsService) *AdminHandler {
	return &AdminHandler{
		authSvc:     authSvc,
		approvalSvc: approvalSvc,
		statsSvc:    statsSvc,
	}
}

// adminIDFrom reads the authenticated operator identity set by JWTAuth.
func adminIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxAdminID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, expiry, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{Token: token, Expiry: expiry.Unix()})
}

// PendingSellers handles GET /api/v1/admin/sellers/pending.
func (h *AdminHandler) PendingSellers(c *gin.Context) {
	sellers, err := h.approvalSvc.PendingSellers(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sellers)
}

// PendingBatches handles GET /api/v1/admin/batches/pending.
func (h *AdminHandler) PendingBatches(c *gin.Context) {
	batches, err := h.approvalSvc.PendingBatches(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, batches)
}

// PendingWithdrawals handles GET /api/v1/admin/withdrawals/pending.
func (h *AdminHandler) PendingWithdrawals(c *gin.Context) {
	withdrawals, err := h.approvalSvc.PendingWithdrawals(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, withdrawals)
}

// resolve binds the shared approve/reject body and entity ID, then
// dispatches to the given resolver.
func (h *AdminHandler) resolve(c *gin.Context, fn func(adminID, entityID uuid.UUID, approve bool) error) {
	adminID, ok := adminIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid id"))
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := fn(adminID, entityID, *req.Approve); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"id": entityID.String(), "approved": *req.Approve})
}

// ResolveSeller handles POST /api/v1/admin/sellers/:id/resolve.
func (h *AdminHandler) ResolveSeller(c *gin.Context) {
	h.resolve(c, func(adminID, entityID uuid.UUID, approve bool) error {
		return h.approvalSvc.ResolveSeller(c.Request.Context(), adminID, entityID, approve)
	})
}

// ResolveBatch handles POST /api/v1/admin/batches/:id/resolve.
func (h *AdminHandler) ResolveBatch(c *gin.Context) {
	h.resolve(c, func(adminID, entityID uuid.UUID, approve bool) error {
		return h.approvalSvc.ResolveBatch(c.Request.Context(), adminID, entityID, approve)
	})
}

// ResolveWithdrawal handles POST /api/v1/admin/withdrawals/:id/resolve.
func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	h.resolve(c, func(adminID, entityID uuid.UUID, approve bool) error {
		return h.approvalSvc.ResolveWithdrawal(c.Request.Context(), adminID, entityID, approve)
	})
}

// BanUser handles POST /api/v1/admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	adminID, ok := adminIDFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	var req dto.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.approvalSvc.SetUserBanned(c.Request.Context(), adminID, userID, *req.Banned); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"user_id": userID, "banned": *req.Banned})
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Revenue handles GET /api/v1/admin/stats/revenue.
func (h *AdminHandler) Revenue(c *gin.Context) {
	windows, err := h.statsSvc.Revenue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, windows)
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
