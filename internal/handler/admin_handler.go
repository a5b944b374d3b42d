package handler

import (
	"net/http"
	"strconv"
	"time"

	"bellissimo/internal/middleware"
	"bellissimo/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	payments      *service.PaymentService
	paymentExpiry time.Duration
}

func NewAdminHandler(payments *service.PaymentService, paymentExpiry time.Duration) *AdminHandler {
	return &AdminHandler{payments: payments, paymentExpiry: paymentExpiry}
}

// LandlordPayments handles GET /admin/landlords/:id/payments?include_deleted=true
func (h *AdminHandler) LandlordPayments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.payments.ListLandlordPayments(c.Request.Context(), id, c.Query("include_deleted") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

// AuditLogs handles GET /admin/audit-logs?resource=payment&resource_id=7
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	rid, err := strconv.ParseUint(c.Query("resource_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource_id", "field": "resource_id"})
		return
	}
	logs, err := h.payments.AuditTrail(c.Request.Context(), c.Query("resource"), uint(rid))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

// ExpirePayments handles POST /admin/payments/expire: runs the stale sweep now.
func (h *AdminHandler) ExpirePayments(c *gin.Context) {
	n, err := h.payments.ExpireStale(c.Request.Context(), h.paymentExpiry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}

// MyPayments handles GET /landlords/me/payments for the calling landlord.
func (h *AdminHandler) MyPayments(c *gin.Context) {
	list, err := h.payments.ListLandlordPayments(c.Request.Context(), middleware.GetUserID(c), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}
