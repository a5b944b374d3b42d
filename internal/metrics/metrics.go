// Package metrics holds the Prometheus collectors for payments and settlements.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_created_total",
		Help: "Payments recorded, by method code.",
	}, []string{"method"})

	PaymentsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Payments confirmed by the provider, by unit type.",
	}, []string{"unit_type"})

	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Payments marked failed, including expired ones.",
	})

	SettlementsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlements_recorded_total",
		Help: "Landlord settlements appended to revenue streams.",
	})

	SettlementAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_amount",
		Help:    "Settlement amounts in the payment currency.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000},
	})

	RevenueStreamsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revenue_streams_paid_total",
		Help: "Revenue streams that reached paid status.",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_notifications_failed_total",
		Help: "Admin notifications that could not be delivered.",
	})
)

// ObserveSettlement records one settlement of amount.
func ObserveSettlement(amount decimal.Decimal) {
	SettlementsRecorded.Inc()
	f, _ := amount.Float64()
	SettlementAmount.Observe(f)
}
