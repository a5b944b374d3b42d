package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LiberecMpesaProvider implements M-Pesa STK push via TheLiberec Card API.
type LiberecMpesaProvider struct {
	BaseURL     string
	Email       string
	Password    string
	WebhookBase string
	client      *http.Client
}

func NewLiberecMpesaProvider(baseURL, email, password, webhookBase string) *LiberecMpesaProvider {
	if baseURL == "" {
		baseURL = "https://card-api.theliberec.com"
	}
	return &LiberecMpesaProvider{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Email:       email,
		Password:    password,
		WebhookBase: strings.TrimRight(webhookBase, "/"),
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type liberecLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type liberecLoginResp struct {
	Token string `json:"token"`
}

// getToken logs in and returns a fresh token (one per transaction).
func (p *LiberecMpesaProvider) getToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(liberecLoginReq{Email: p.Email, Password: p.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/merchants/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %d", resp.StatusCode)
	}
	var out liberecLoginResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

type mpesaSTKReq struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Description       string `json:"description"`
	CustomerPhone     string `json:"customer_phone"`
	CustomerFirstName string `json:"customer_first_name"`
	CustomerLastName  string `json:"customer_last_name"`
	CustomerEmail     string `json:"customer_email"`
	CallbackURL       string `json:"callback_url"`
	OrderID           string `json:"order_id"`
}

type mpesaSTKResp struct {
	OrderID             string `json:"order_id"`
	MerchantOrderID     string `json:"merchant_order_id"`
	CheckoutRequestID   string `json:"checkout_request_id"`
	Status              string `json:"status"`
	ResponseCode        string `json:"response_code"`
	ResponseDescription string `json:"response_description"`
}

// STKAmount converts an amount to the whole shillings M-Pesa accepts, rounding up
// and never below 1.
func STKAmount(amount decimal.Decimal) string {
	whole := amount.Ceil()
	if whole.LessThan(decimal.NewFromInt(1)) {
		return "1"
	}
	return whole.StringFixed(0)
}

// NormalizePhone turns +2547..., 07... and 2547... into 2547....
func NormalizePhone(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if strings.HasPrefix(phone, "0") && len(phone) == 10 {
		return "254" + phone[1:]
	}
	return phone
}

func (p *LiberecMpesaProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("mpesa stk: order id is required")
	}
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("mpesa login: %w", err)
	}
	callbackURL := req.CallbackURL
	if callbackURL == "" && p.WebhookBase != "" {
		callbackURL = p.WebhookBase + "/api/v1/webhooks/mpesa"
	}
	first, last, _ := strings.Cut(strings.TrimSpace(req.CustomerName), " ")
	payload := mpesaSTKReq{
		Amount:            STKAmount(req.Amount),
		Currency:          "KES",
		Description:       req.Description,
		CustomerPhone:     NormalizePhone(req.CustomerPhone),
		CustomerFirstName: first,
		CustomerLastName:  last,
		CustomerEmail:     req.CustomerEmail,
		CallbackURL:       callbackURL,
		OrderID:           req.OrderID,
	}
	if req.Currency != "" {
		payload.Currency = req.Currency
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/transactions/mpesa", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	slog.Info("mpesa stk push", "order_id", req.OrderID, "callback", callbackURL)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Warn("mpesa stk rejected", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("mpesa stk: %d", resp.StatusCode)
	}
	var out mpesaSTKResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	slog.Debug("mpesa stk accepted", "order_id", out.OrderID, "merchant_order_id", out.MerchantOrderID,
		"status", out.Status, "checkout_request_id", out.CheckoutRequestID)
	return &PaymentResponse{
		Reference:         req.OrderID,
		Status:            out.Status,
		ExpiresAt:         time.Now().Add(10 * time.Minute),
		CheckoutRequestID: out.CheckoutRequestID,
	}, nil
}
