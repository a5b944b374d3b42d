package handler

import (
	"fmt"
	"net/http"
	"time"

	"bellissimo/internal/middleware"
	"bellissimo/internal/models"
	"bellissimo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SettlementHandler struct {
	ledger *service.SettlementService
}

func NewSettlementHandler(ledger *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{ledger: ledger}
}

// ownsStream loads the stream when the caller is its landlord or an admin. On nil
// the response has already been written.
func (h *SettlementHandler) ownsStream(c *gin.Context, id uint) *models.RevenueStream {
	rs, err := h.ledger.GetRevenueStream(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil
	}
	if !middleware.IsAdmin(c) && rs.LandlordID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "revenue stream not found"})
		return nil
	}
	return rs
}

// Get returns a stream with its settlements and balance. GET /revenue-streams/:id
func (h *SettlementHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rs := h.ownsStream(c, id)
	if rs == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue_stream": rs, "balance": service.BalanceOf(rs)})
}

// Record appends a settlement. POST /revenue-streams/:id/settlements
func (h *SettlementHandler) Record(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		PaidAt    *time.Time      `json:"paid_at"`
		Reference string          `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.ownsStream(c, id) == nil {
		return
	}
	in := service.SettlementInput{RevenueStreamID: id, Amount: req.Amount, Reference: req.Reference}
	if req.PaidAt != nil {
		in.PaidAt = *req.PaidAt
	}
	txn, balance, err := h.ledger.RecordSettlement(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"settlement": txn, "balance": balance})
}

// ListMine lists the caller's revenue streams. GET /landlords/me/revenue-streams?status=pending
func (h *SettlementHandler) ListMine(c *gin.Context) {
	list, err := h.ledger.ListByLandlord(c.Request.Context(), middleware.GetUserID(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	outstanding := decimal.Zero
	for _, s := range list {
		outstanding = outstanding.Add(s.Outstanding)
	}
	c.JSON(http.StatusOK, gin.H{"revenue_streams": list, "outstanding": outstanding})
}

// Statement downloads the caller's streams as xlsx. GET /landlords/me/statement.xlsx
func (h *SettlementHandler) Statement(c *gin.Context) {
	landlordID := middleware.GetUserID(c)
	list, err := h.ledger.ListByLandlord(c.Request.Context(), landlordID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	fileName := fmt.Sprintf("revenue_statement_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := service.WriteStatement(c.Writer, landlordID, list); err != nil {
		respondError(c, err)
	}
}
