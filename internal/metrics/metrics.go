// Package metrics counts one backtest run's orders, fills and funding
// accruals on a private Prometheus registry, grounded on
// biteblock-labs-HyperBasis's internal/metrics package. A batch CLI has
// nothing to scrape, so Handler exists for completeness but cmd/perpsim
// never wires it to a listener (see DESIGN.md).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const namespace = "perpsim"

// Counter is the minimal capability the engine needs from a metric.
type Counter interface {
	Inc()
}

// Run is the set of counters one engine run increments as it executes.
type Run struct {
	OrdersPlaced     Counter
	OrdersFilled     Counter
	OrdersRejected   Counter
	FundingAccruals  Counter
	EquityPoints     Counter

	registry *prometheus.Registry
	values   map[string]prometheus.Counter
}

// New builds a fresh private registry and counter set for one run.
func New() *Run {
	registry := prometheus.NewRegistry()

	mk := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	ordersPlaced := mk("orders_placed_total", "Total number of orders queued onto the active list.")
	ordersFilled := mk("orders_filled_total", "Total number of fills realized against the book.")
	ordersRejected := mk("orders_rejected_total", "Total number of orders rejected at placement (post-only cross).")
	fundingAccruals := mk("funding_accruals_total", "Total number of funding payments applied.")
	equityPoints := mk("equity_points_total", "Total number of equity curve rows recorded.")

	registry.MustRegister(ordersPlaced, ordersFilled, ordersRejected, fundingAccruals, equityPoints)

	return &Run{
		OrdersPlaced:    ordersPlaced,
		OrdersFilled:    ordersFilled,
		OrdersRejected:  ordersRejected,
		FundingAccruals: fundingAccruals,
		EquityPoints:    equityPoints,
		registry:        registry,
		values: map[string]prometheus.Counter{
			"orders_placed":    ordersPlaced,
			"orders_filled":    ordersFilled,
			"orders_rejected":  ordersRejected,
			"funding_accruals": fundingAccruals,
			"equity_points":    equityPoints,
		},
	}
}

// Handler exposes the private registry over HTTP. Unused by cmd/perpsim
// today (a one-shot batch job has nothing to scrape it), kept for a future
// long-running mode or an ad hoc debugging server.
func (r *Run) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Snapshot reads every counter's current value back via testutil, the same
// gather-and-read pattern used to fold run counts into a printed summary at
// the end of a run.
func (r *Run) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(r.values))
	for name, c := range r.values {
		out[name] = testutil.ToFloat64(c)
	}
	return out
}
