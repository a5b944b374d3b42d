package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bellissimo/config"
	"bellissimo/internal/auth"
	"bellissimo/internal/domain"
	"bellissimo/internal/models"
	"bellissimo/internal/repository"
	"bellissimo/internal/testutil"
	"bellissimo/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	tenantID   uint = 10
	landlordID uint = 20
	adminID    uint = 1
)

type testServer struct {
	t      *testing.T
	cfg    *config.Config
	engine *gin.Engine
	svc    *Services
	repos  *repository.Repos
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server:  config.ServerConfig{Env: "test"},
		JWT:     config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "bellissimo"},
		Payment: config.PaymentConfig{WebhookSecret: "hook", Currency: "KES"},
	}
	svc := NewServices(cfg, db, cache.NewMemory(), nil, nil)
	t.Cleanup(svc.Payments.Wait)
	return &testServer{t: t, cfg: cfg, engine: Setup(cfg, svc), svc: svc, repos: repository.NewRepos(db)}
}

func (s *testServer) token(userID uint, role string) string {
	tok, err := auth.GenerateAccessToken(&s.cfg.JWT, userID, "", role)
	if err != nil {
		s.t.Fatalf("token: %v", err)
	}
	return tok
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (s *testServer) unit(unitType string) uint {
	u := &models.ResidentialUnit{PropertyID: 1, LandlordID: landlordID, UnitNumber: "C3", UnitType: unitType, RentAmount: decimal.NewFromInt(12000)}
	if err := s.repos.Units.CreateUnit(context.Background(), u); err != nil {
		s.t.Fatalf("create unit: %v", err)
	}
	return u.ID
}

func (s *testServer) mpesaID() uint {
	m, err := s.repos.Methods.GetByCode(context.Background(), domain.MethodCodeMpesa)
	if err != nil {
		s.t.Fatalf("mpesa: %v", err)
	}
	return m.ID
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tenant := s.token(tenantID, domain.RoleTenant)
	landlord := s.token(landlordID, domain.RoleLandlord)
	unitID := s.unit(domain.UnitTypeBedsitter)

	w, body := s.do(http.MethodPost, "/api/v1/payments", tenant, map[string]any{
		"landlord_id": landlordID, "residential_unit_id": unitID, "amount": "12000",
		"method_id": s.mpesaID(), "details": map[string]string{"account_name": "Jane"},
	})
	if w.Code != http.StatusBadRequest || body["field"] != "phone_number" {
		t.Fatalf("missing phone: got %d %v", w.Code, body)
	}

	w, body = s.do(http.MethodPost, "/api/v1/payments", tenant, map[string]any{
		"landlord_id": landlordID, "residential_unit_id": unitID, "amount": "12000",
		"method_id": s.mpesaID(), "details": map[string]string{"phone_number": "+254712345678"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d %v", w.Code, body)
	}
	paymentID := uint(body["payment"].(map[string]any)["id"].(float64))
	if body["order_id"] != fmt.Sprintf("pay-%d", paymentID) {
		t.Errorf("order_id: %v", body["order_id"])
	}

	// the payer cannot confirm their own payment
	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/complete", paymentID), tenant, map[string]string{"transaction_reference": "X"})
	if w.Code != http.StatusForbidden {
		t.Errorf("tenant complete: got %d", w.Code)
	}

	w, body = s.do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/complete", paymentID), landlord, map[string]string{"transaction_reference": "MPESA-REF-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: got %d %v", w.Code, body)
	}
	rs := body["payment"].(map[string]any)["revenue_stream"].(map[string]any)
	streamID := uint(rs["id"].(float64))

	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/complete", paymentID), landlord, map[string]string{"transaction_reference": "MPESA-REF-2"})
	if w.Code != http.StatusConflict {
		t.Errorf("second complete: got %d, want 409", w.Code)
	}

	w, body = s.do(http.MethodPost, fmt.Sprintf("/api/v1/revenue-streams/%d/settlements", streamID), landlord, map[string]any{"amount": "300"})
	if w.Code != http.StatusCreated {
		t.Fatalf("settle 300: got %d %v", w.Code, body)
	}
	if got := body["balance"].(map[string]any)["outstanding"]; got != "200" {
		t.Errorf("outstanding after 300: %v", got)
	}
	w, body = s.do(http.MethodPost, fmt.Sprintf("/api/v1/revenue-streams/%d/settlements", streamID), landlord, map[string]any{"amount": "200"})
	if w.Code != http.StatusCreated || body["balance"].(map[string]any)["status"] != domain.RevenueStatusPaid {
		t.Fatalf("settle 200: got %d %v", w.Code, body)
	}

	w, body = s.do(http.MethodGet, "/api/v1/landlords/me/revenue-streams", landlord, nil)
	if w.Code != http.StatusOK || len(body["revenue_streams"].([]any)) != 1 {
		t.Errorf("list mine: got %d %v", w.Code, body)
	}

	w, _ = s.do(http.MethodGet, "/api/v1/landlords/me/statement.xlsx", landlord, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("statement: got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestRevenueStreamHiddenFromOtherLandlords(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	unitID := s.unit(domain.UnitTypeOneBedroom)
	p := &models.Payment{PayerID: tenantID, LandlordID: landlordID, Amount: decimal.NewFromInt(100), MethodID: s.mpesaID(), Status: domain.PaymentStatusPending}
	p.SetTarget(models.UnitTarget(unitID))
	if err := s.repos.Payments.Create(ctx, p); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	done, err := s.svc.Payments.MarkCompleted(ctx, p.ID, "REF")
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	other := s.token(99, domain.RoleLandlord)
	w, _ := s.do(http.MethodGet, fmt.Sprintf("/api/v1/revenue-streams/%d", done.RevenueStream.ID), other, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other landlord: got %d, want 404", w.Code)
	}
	w, body := s.do(http.MethodGet, fmt.Sprintf("/api/v1/revenue-streams/%d", done.RevenueStream.ID), s.token(adminID, domain.RoleAdmin), nil)
	if w.Code != http.StatusOK || body["balance"].(map[string]any)["outstanding"] != "800" {
		t.Errorf("admin view: got %d %v", w.Code, body)
	}
}

func TestAdminFeeAndMethodRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(adminID, domain.RoleAdmin)
	tenant := s.token(tenantID, domain.RoleTenant)

	w, _ := s.do(http.MethodPut, "/api/v1/admin/fees/bedsitter", tenant, map[string]any{"fixed_fee": "700"})
	if w.Code != http.StatusForbidden {
		t.Errorf("tenant fee update: got %d", w.Code)
	}
	w, body := s.do(http.MethodPut, "/api/v1/admin/fees/bedsitter", admin, map[string]any{"fixed_fee": "700"})
	if w.Code != http.StatusOK {
		t.Fatalf("fee update: got %d %v", w.Code, body)
	}
	w, body = s.do(http.MethodGet, "/api/v1/fees/bedsitter", tenant, nil)
	if w.Code != http.StatusOK || body["fixed_fee"] != "700" {
		t.Errorf("fee read: got %d %v", w.Code, body)
	}
	w, _ = s.do(http.MethodGet, "/api/v1/fees/castle", tenant, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown unit type: got %d", w.Code)
	}

	w, body = s.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/payment-methods/%d/fields", s.mpesaID()), admin, map[string]any{
		"fields": []map[string]any{{"field_name": "phone_number", "required": true}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("replace fields: got %d %v", w.Code, body)
	}
	w, body = s.do(http.MethodGet, fmt.Sprintf("/api/v1/payment-methods/%d/fields", s.mpesaID()), tenant, nil)
	if w.Code != http.StatusOK || len(body["optional"].([]any)) != 0 {
		t.Errorf("fields after replace: got %d %v", w.Code, body)
	}

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/payment-methods/%d", s.mpesaID()), admin, map[string]any{"is_active": false})
	if w.Code != http.StatusOK {
		t.Errorf("deactivate: got %d", w.Code)
	}
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/api/v1/payment-methods/%d/fields", s.mpesaID()), tenant, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("inactive method fields: got %d, want 404", w.Code)
	}
}

func TestFailPaymentBody(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	landlord := s.token(landlordID, domain.RoleLandlord)
	p := &models.Payment{PayerID: tenantID, LandlordID: landlordID, Amount: decimal.NewFromInt(12000), MethodID: s.mpesaID(), Status: domain.PaymentStatusPending}
	p.SetTarget(models.UnitTarget(s.unit(domain.UnitTypeBedsitter)))
	if err := s.repos.Payments.Create(ctx, p); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	path := fmt.Sprintf("/api/v1/payments/%d/fail", p.ID)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"reason":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+landlord)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: got %d, want 400", w.Code)
	}
	got, err := s.repos.Payments.GetByID(ctx, p.ID, false)
	if err != nil || got.Status != domain.PaymentStatusPending {
		t.Fatalf("payment changed by rejected request: %+v, %v", got, err)
	}

	w, body := s.do(http.MethodPost, path, landlord, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty body: got %d %v", w.Code, body)
	}
	if status := body["payment"].(map[string]any)["status"]; status != domain.PaymentStatusFailed {
		t.Errorf("status: got %v, want failed", status)
	}
}

func TestMpesaWebhook(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	newPayment := func() uint {
		p := &models.Payment{PayerID: tenantID, LandlordID: landlordID, Amount: decimal.NewFromInt(12000), MethodID: s.mpesaID(), Status: domain.PaymentStatusPending}
		p.SetTarget(models.UnitTarget(s.unit(domain.UnitTypeBedsitter)))
		if err := s.repos.Payments.Create(ctx, p); err != nil {
			t.Fatalf("create payment: %v", err)
		}
		return p.ID
	}
	post := func(secret string, payload map[string]string) int {
		b, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mpesa", bytes.NewReader(b))
		req.Header.Set("X-Webhook-Secret", secret)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w.Code
	}

	ok := newPayment()
	if code := post("wrong", map[string]string{"merchant_order_id": fmt.Sprintf("pay-%d", ok), "status": "COMPLETED"}); code != http.StatusUnauthorized {
		t.Errorf("bad secret: got %d", code)
	}
	if code := post("hook", map[string]string{"merchant_order_id": fmt.Sprintf("pay-%d", ok), "status": "COMPLETED", "receipt_number": "QKX123"}); code != http.StatusOK {
		t.Fatalf("completed callback: got %d", code)
	}
	p, _ := s.svc.Payments.GetPayment(ctx, ok, false)
	if p.Status != domain.PaymentStatusCompleted || p.TransactionReference != "QKX123" || p.RevenueStream == nil {
		t.Errorf("after callback: %+v", p)
	}
	// provider retries are acknowledged without changes
	if code := post("hook", map[string]string{"order_id": fmt.Sprintf("pay-%d", ok), "status": "COMPLETED", "receipt_number": "QKX999"}); code != http.StatusOK {
		t.Errorf("retry: got %d", code)
	}

	bad := newPayment()
	post("hook", map[string]string{"merchant_order_id": fmt.Sprintf("pay-%d", bad), "status": "FAILED", "status_description": "Request cancelled by user"})
	p, _ = s.svc.Payments.GetPayment(ctx, bad, false)
	if p.Status != domain.PaymentStatusFailed || p.FailureReason != "Request cancelled by user" {
		t.Errorf("after failed callback: %+v", p)
	}

	if code := post("hook", map[string]string{"merchant_order_id": "order-1", "status": "COMPLETED"}); code != http.StatusOK {
		t.Errorf("unknown order: got %d", code)
	}
}

func TestAdminAuditAndLandlordPayments(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(adminID, domain.RoleAdmin)
	landlord := s.token(landlordID, domain.RoleLandlord)
	tenant := s.token(tenantID, domain.RoleTenant)
	unitID := s.unit(domain.UnitTypeTwoBedroom)

	w, body := s.do(http.MethodPost, "/api/v1/payments", tenant, map[string]any{
		"landlord_id": landlordID, "residential_unit_id": unitID, "amount": "30000",
		"method_id": s.mpesaID(), "details": map[string]string{"phone_number": "254712345678"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d %v", w.Code, body)
	}
	paymentID := uint(body["payment"].(map[string]any)["id"].(float64))

	w, body = s.do(http.MethodGet, "/api/v1/landlords/me/payments", landlord, nil)
	if w.Code != http.StatusOK || len(body["payments"].([]any)) != 1 {
		t.Errorf("landlord payments: got %d %v", w.Code, body)
	}
	w, body = s.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/landlords/%d/payments", landlordID), admin, nil)
	if w.Code != http.StatusOK || len(body["payments"].([]any)) != 1 {
		t.Errorf("admin landlord payments: got %d %v", w.Code, body)
	}

	w, body = s.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/audit-logs?resource=payment&resource_id=%d", paymentID), admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit logs: got %d %v", w.Code, body)
	}
	logs := body["audit_logs"].([]any)
	if len(logs) != 1 || logs[0].(map[string]any)["action"] != domain.AuditPaymentCreated {
		t.Errorf("audit logs: %v", logs)
	}
	if uid := logs[0].(map[string]any)["user_id"]; uid != float64(tenantID) {
		t.Errorf("audit actor: got %v, want %d", uid, tenantID)
	}
	w, _ = s.do(http.MethodGet, "/api/v1/admin/audit-logs?resource=user&resource_id=1", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad resource: got %d", w.Code)
	}
}
