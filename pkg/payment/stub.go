package payment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubProvider accepts every request without contacting anyone. Used in development
// and tests; payments stay pending until completed by hand or by the webhook.
type StubProvider struct {
	mu       sync.Mutex
	requests []PaymentRequest
}

func (s *StubProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return &PaymentResponse{
		Reference: fmt.Sprintf("stub_%s", req.OrderID),
		Status:    "PENDING",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil
}

// Requests returns the requests received so far.
func (s *StubProvider) Requests() []PaymentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PaymentRequest(nil), s.requests...)
}
