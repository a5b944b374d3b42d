package handler

import (
	"errors"
	"io"
	"net/http"

	"bellissimo/internal/domain"
	"bellissimo/internal/middleware"
	"bellissimo/internal/models"
	"bellissimo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createPaymentRequest struct {
	PayerID           uint              `json:"payer_id"` // admins only; tenants pay as themselves
	LandlordID        uint              `json:"landlord_id" binding:"required"`
	ResidentialUnitID *uint             `json:"residential_unit_id"`
	AirbnbBookingID   *uint             `json:"airbnb_booking_id"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          string            `json:"currency"`
	MethodID          uint              `json:"method_id" binding:"required"`
	Details           map[string]string `json:"details"`
}

func (r *createPaymentRequest) target() (models.Target, error) {
	switch {
	case r.ResidentialUnitID != nil && r.AirbnbBookingID != nil:
		return models.Target{}, domain.Validation("target", "set only one of residential_unit_id or airbnb_booking_id")
	case r.ResidentialUnitID != nil:
		return models.UnitTarget(*r.ResidentialUnitID), nil
	case r.AirbnbBookingID != nil:
		return models.BookingTarget(*r.AirbnbBookingID), nil
	}
	return models.Target{}, domain.Validation("target", "exactly one of residential_unit_id or airbnb_booking_id is required")
}

// Create records a pending payment. POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := req.target()
	if err != nil {
		respondError(c, err)
		return
	}
	payer := middleware.GetUserID(c)
	if middleware.IsAdmin(c) && req.PayerID != 0 {
		payer = req.PayerID
	}
	p, err := h.payments.CreatePayment(c.Request.Context(), service.CreatePaymentInput{
		PayerID:    payer,
		LandlordID: req.LandlordID,
		Target:     target,
		Amount:     req.Amount,
		Currency:   req.Currency,
		MethodID:   req.MethodID,
		Details:    req.Details,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": p, "order_id": service.OrderID(p.ID)})
}

// Get returns a payment to its payer, its landlord, or an admin. GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	includeDeleted := c.Query("include_deleted") == "true" && middleware.IsAdmin(c)
	p, err := h.payments.GetPayment(c.Request.Context(), id, includeDeleted)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canSeePayment(c, p) {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

func canSeePayment(c *gin.Context, p *models.Payment) bool {
	uid := middleware.GetUserID(c)
	return middleware.IsAdmin(c) || p.PayerID == uid || p.LandlordID == uid
}

// canConfirmPayment allows admins and the receiving landlord to settle a payment's outcome.
func (h *PaymentHandler) canConfirmPayment(c *gin.Context, id uint) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	p, err := h.payments.GetPayment(c.Request.Context(), id, false)
	if err != nil {
		respondError(c, err)
		return false
	}
	if p.LandlordID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}

// Complete confirms a payment. POST /payments/:id/complete
func (h *PaymentHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TransactionReference string `json:"transaction_reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_reference is required", "field": "transaction_reference"})
		return
	}
	if !h.canConfirmPayment(c, id) {
		return
	}
	p, err := h.payments.MarkCompleted(c.Request.Context(), id, req.TransactionReference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

// Fail marks a payment failed. POST /payments/:id/fail
func (h *PaymentHandler) Fail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.canConfirmPayment(c, id) {
		return
	}
	p, err := h.payments.MarkFailed(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}
