// Package metrics exposes prometheus counters for the economy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and updates all bot metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	priceTicks   prometheus.Counter
	currentPrice prometheus.Gauge
	trades       *prometheus.CounterVec
	workPayouts  prometheus.Counter
	transfers    prometheus.Counter
	commands     *prometheus.CounterVec
}

// NewCollector builds the collector with all metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		priceTicks: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "dogcoin_price_ticks_total",
			Help: "Total number of price evolution ticks applied",
		}),
		currentPrice: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "dogcoin_current_price",
			Help: "Most recent DogCoin price",
		}),
		trades: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "dogcoin_trades_total",
			Help: "Trades by action and outcome",
		}, []string{"action", "result"}),
		workPayouts: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "dogcoin_work_payouts_total",
			Help: "Total number of work payouts credited",
		}),
		transfers: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "dogcoin_transfers_total",
			Help: "Total number of give transfers (including mints)",
		}),
		commands: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "dogcoin_commands_total",
			Help: "Chat commands handled, by command",
		}, []string{"command"}),
	}
}

// PriceTick records one applied tick and the resulting price.
func (c *Collector) PriceTick(price float64) {
	c.priceTicks.Inc()
	c.currentPrice.Set(price)
}

// TradeExecuted records a trade attempt outcome.
func (c *Collector) TradeExecuted(action string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	c.trades.WithLabelValues(action, result).Inc()
}

// WorkPayout records one credited work payout.
func (c *Collector) WorkPayout() {
	c.workPayouts.Inc()
}

// TransferDone records one completed give (transfer or mint).
func (c *Collector) TransferDone() {
	c.transfers.Inc()
}

// CommandHandled records one dispatched chat command.
func (c *Collector) CommandHandled(command string) {
	c.commands.WithLabelValues(command).Inc()
}

// Handler serves the registry in prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
