// Package metrics provides Prometheus instrumentation for trade and settle
// batches. A batch process has no scrape endpoint, so the registry is written
// as a node-exporter textfile when the batch ends.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the batch metrics. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	betsPlaced   *prometheus.CounterVec
	betsRejected *prometheus.CounterVec
	costCents    *prometheus.CounterVec
	citySkipped  *prometheus.CounterVec
	settled      *prometheus.CounterVec
	netCents     prometheus.Gauge
	runDuration  *prometheus.HistogramVec
	lastRun      *prometheus.GaugeVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		betsPlaced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wxtrader_bets_placed_total",
			Help: "Bets admitted by the guardrails and sent to the exchange",
		}, []string{"mode", "city", "side"}),
		betsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wxtrader_bets_rejected_total",
			Help: "Candidate bets rejected, by guardrail reason",
		}, []string{"reason"}),
		costCents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wxtrader_bet_cost_cents_total",
			Help: "Cents committed to placed bets",
		}, []string{"mode", "city"}),
		citySkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wxtrader_city_skipped_total",
			Help: "Cities skipped because forecast or market data was missing",
		}, []string{"city"}),
		settled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wxtrader_trades_settled_total",
			Help: "Trades settled, by result",
		}, []string{"result"}),
		netCents: f.NewGauge(prometheus.GaugeOpts{
			Name: "wxtrader_settlement_net_cents",
			Help: "Net P&L in cents of the last settlement batch",
		}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wxtrader_run_duration_seconds",
			Help:    "Batch duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"command"}),
		lastRun: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wxtrader_last_run_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}, []string{"command"}),
	}
}

// Registry exposes the registry for tests and custom gatherers.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) BetPlaced(mode, city, side string, cost int) {
	if r == nil {
		return
	}
	r.betsPlaced.WithLabelValues(mode, city, side).Inc()
	r.costCents.WithLabelValues(mode, city).Add(float64(cost))
}

func (r *Recorder) BetRejected(reason string) {
	if r == nil {
		return
	}
	r.betsRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) CitySkipped(city string) {
	if r == nil {
		return
	}
	r.citySkipped.WithLabelValues(city).Inc()
}

func (r *Recorder) Settled(result string) {
	if r == nil {
		return
	}
	r.settled.WithLabelValues(result).Inc()
}

func (r *Recorder) SettlementNet(cents int) {
	if r == nil {
		return
	}
	r.netCents.Set(float64(cents))
}

// RunFinished records the duration of a batch started at start.
func (r *Recorder) RunFinished(command string, start time.Time) {
	if r == nil {
		return
	}
	now := time.Now()
	r.runDuration.WithLabelValues(command).Observe(now.Sub(start).Seconds())
	r.lastRun.WithLabelValues(command).Set(float64(now.Unix()))
}

// WriteTextfile writes the registry to path atomically. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics.WriteTextfile: %w", err)
	}
	return nil
}
