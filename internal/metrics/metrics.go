// Package metrics holds the Prometheus collectors for checkout, fulfillment
// and the stock ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kulit",
		Name:      "orders_created_total",
		Help:      "Orders successfully placed.",
	})

	CheckoutRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kulit",
		Name:      "checkout_rejected_total",
		Help:      "Checkout attempts rejected, by reason.",
	}, []string{"reason"})

	OrderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kulit",
		Name:      "order_transitions_total",
		Help:      "Order status transitions, by target status.",
	}, []string{"status"})

	StockAdjustments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kulit",
		Name:      "stock_adjustments_total",
		Help:      "Stock ledger entries, by adjustment type.",
	}, []string{"type"})

	NotificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kulit",
		Name:      "notification_failures_total",
		Help:      "Best-effort event publications or emails that failed.",
	})
)

func init() {
	prometheus.MustRegister(OrdersCreated, CheckoutRejected, OrderTransitions, StockAdjustments, NotificationFailures)
}
