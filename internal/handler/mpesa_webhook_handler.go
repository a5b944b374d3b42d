package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"bellissimo/internal/domain"
	"bellissimo/internal/service"

	"github.com/gin-gonic/gin"
)

// LiberecMpesaCallback is the webhook payload from TheLiberec after M-Pesa payment.
type LiberecMpesaCallback struct {
	Amount            string `json:"amount"`
	CheckoutRequestID string `json:"checkout_request_id"`
	Currency          string `json:"currency"`
	CustomerPhone     string `json:"customer_phone"`
	MerchantOrderID   string `json:"merchant_order_id"`
	OrderID           string `json:"order_id"`
	ReceiptNumber     string `json:"receipt_number"`
	ReferenceOrderID  string `json:"reference_order_id"`
	Status            string `json:"status"`
	StatusCode        string `json:"status_code"`
	StatusDescription string `json:"status_description"`
	TransactionDate   string `json:"transaction_date"`
	TransactionUUID   string `json:"transaction_uuid"`
}

// orderID returns the first order id the provider filled in.
func (p *LiberecMpesaCallback) orderID() string {
	for _, id := range []string{p.MerchantOrderID, p.OrderID, p.ReferenceOrderID} {
		if id != "" {
			return id
		}
	}
	return ""
}

type MpesaWebhookHandler struct {
	payments *service.PaymentService
	secret   string
}

func NewMpesaWebhookHandler(payments *service.PaymentService, secret string) *MpesaWebhookHandler {
	return &MpesaWebhookHandler{payments: payments, secret: secret}
}

// Handle processes TheLiberec M-Pesa callback. COMPLETED confirms the payment with the
// receipt number; any other status fails it. Unknown or already settled payments are
// acknowledged so the provider stops retrying.
func (h *MpesaWebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Webhook-Secret")), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		slog.Warn("mpesa callback read failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	var payload LiberecMpesaCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("mpesa callback invalid json", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	orderID := payload.orderID()
	log := slog.With("order_id", orderID, "status", payload.Status, "receipt", payload.ReceiptNumber)
	log.Info("mpesa callback received")

	paymentID, err := service.ParseOrderID(orderID)
	if err != nil {
		log.Warn("mpesa callback for unknown order")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ctx := c.Request.Context()
	if payload.Status == "COMPLETED" {
		ref := payload.ReceiptNumber
		if ref == "" {
			ref = payload.TransactionUUID
		}
		_, err = h.payments.MarkCompleted(ctx, paymentID, ref)
	} else {
		reason := payload.StatusDescription
		if reason == "" {
			reason = "mpesa status " + payload.Status
		}
		_, err = h.payments.MarkFailed(ctx, paymentID, reason)
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
		log.Info("mpesa callback ignored", "payment_id", paymentID, "reason", err.Error())
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		// 5xx makes the provider retry
		respondError(c, err)
	}
}
