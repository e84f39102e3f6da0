// Package trader corre un batch de trading: puntúa cada contrato visible,
// pasa los candidatos por los guardrails y ejecuta los admitidos.
package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/application/risk"
	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/metrics"
	"github.com/alejandrodnm/wxtrader/internal/ports"
)

// Config son los parámetros de trading de un batch.
type Config struct {
	Mode         domain.Mode
	Cities       []domain.City
	MinEdgeCents float64
	Limits       risk.Limits
	SD           domain.SDTable
	Workers      int // ciudades en paralelo; <= 0 usa NumCPU × 2
}

// Trader reúne los colaboradores de un batch.
type Trader struct {
	forecasts ports.ForecastProvider
	markets   ports.MarketProvider
	executor  ports.OrderExecutor
	ledger    ports.Ledger
	notifier  ports.Notifier
	metrics   *metrics.Recorder
	cfg       Config
	now       func() time.Time
}

// New crea un Trader. notifier y m pueden ser nil.
func New(
	forecasts ports.ForecastProvider,
	markets ports.MarketProvider,
	executor ports.OrderExecutor,
	ledger ports.Ledger,
	notifier ports.Notifier,
	m *metrics.Recorder,
	cfg Config,
) *Trader {
	return &Trader{
		forecasts: forecasts,
		markets:   markets,
		executor:  executor,
		ledger:    ledger,
		notifier:  notifier,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run ejecuta un batch para date. No colocar nada es un resultado normal.
// Sólo abortan los fallos del ledger que impiden aplicar los guardrails.
func (t *Trader) Run(ctx context.Context, date time.Time) (domain.RunReport, error) {
	start := t.now()
	report := domain.RunReport{Mode: t.cfg.Mode, TargetDate: date}
	defer t.metrics.RunFinished("trade", start)

	slog.Info("trade: run starting",
		"mode", t.cfg.Mode, "date", domain.FormatDate(date), "cities", len(t.cfg.Cities),
		"min_edge", t.cfg.MinEdgeCents, "run_cap", t.cfg.Limits.MaxRunCents)

	if t.cfg.Mode != domain.ModeDry {
		if bal, err := t.executor.GetBalance(ctx); err != nil {
			slog.Warn("trade: balance unavailable", "err", err)
		} else {
			report.BalanceBefore = &bal
		}
	}

	rc, err := risk.NewRunContext(ctx, t.ledger, date)
	if err != nil {
		return report, fmt.Errorf("trader.Run: %w", err)
	}
	pipeline := risk.NewPipeline(t.cfg.Limits, rc, t.executor, t.ledger, t.cfg.Mode)

	var candidates []domain.CandidateBet
	for _, sc := range t.scoreCitiesConcurrent(ctx, t.cfg.Cities, date, t.cfg.Workers) {
		report.Skipped = append(report.Skipped, sc.skipped...)
		for _, p := range sc.problems {
			t.logProblem(ctx, p)
		}
		if sc.err != nil {
			slog.Warn("trade: skipping city", "city", sc.city, "err", sc.err)
			report.Skipped = append(report.Skipped, domain.SkippedItem{City: sc.city, Reason: "forecast unavailable"})
			t.metrics.CitySkipped(string(sc.city))
			t.notifyError(ctx, fmt.Sprintf("%s skipped", sc.city), sc.err)
			continue
		}
		candidates = append(candidates, sc.bets...)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].EV > candidates[j].EV })
	slog.Info("trade: candidates scored", "count", len(candidates))

	for _, bet := range candidates {
		trade, err := pipeline.Admit(ctx, bet)
		var rej *risk.Rejection
		switch {
		case errors.As(err, &rej):
			slog.Info("trade: bet rejected", "ticker", bet.Ticker(), "side", bet.Side, "reason", rej.Reason, "detail", rej.Detail)
			report.Rejected = append(report.Rejected, domain.RejectedBet{Bet: bet, Reason: rej.Reason, Detail: rej.Detail})
			t.metrics.BetRejected(rej.Reason)
		case err != nil && trade.Ticker != "":
			// La orden salió; sólo falló la escritura en el ledger.
			slog.Error("trade: order placed but not recorded", "ticker", bet.Ticker(), "err", err)
			report.Placed = append(report.Placed, trade)
			report.TotalCost += trade.CostCents
			t.notifyError(ctx, "ledger write failed for "+bet.Ticker(), err)
		case err != nil:
			slog.Warn("trade: order failed", "ticker", bet.Ticker(), "err", err)
			report.Failed = append(report.Failed, domain.RejectedBet{Bet: bet, Reason: "order_failed", Detail: err.Error()})
			t.notifyError(ctx, "order failed for "+bet.Ticker(), err)
		default:
			report.Placed = append(report.Placed, trade)
			report.TotalCost += trade.CostCents
			t.metrics.BetPlaced(string(t.cfg.Mode), string(trade.City), string(trade.Side), trade.CostCents)
		}
	}

	if t.cfg.Mode != domain.ModeDry && len(report.Placed) > 0 {
		if bal, err := t.executor.GetBalance(ctx); err == nil {
			report.BalanceAfter = &bal
		}
	}

	if err := t.ledger.LogRun(ctx, domain.RunSummary{
		Timestamp:     t.now(),
		Mode:          t.cfg.Mode,
		TargetDate:    date,
		Cities:        t.cfg.Cities,
		TradesPlaced:  len(report.Placed),
		TradesSkipped: len(report.Rejected) + len(report.Failed),
		TotalCost:     report.TotalCost,
		BalanceBefore: report.BalanceBefore,
		BalanceAfter:  report.BalanceAfter,
	}); err != nil {
		slog.Warn("trade: run not recorded", "err", err)
	}

	if t.notifier != nil {
		if err := t.notifier.NotifyRun(ctx, report); err != nil {
			slog.Warn("trade: notifier error", "err", err)
		}
	}

	slog.Info("trade: run complete",
		"placed", len(report.Placed), "rejected", len(report.Rejected),
		"failed", len(report.Failed), "skipped", len(report.Skipped), "cost", report.TotalCost)
	return report, nil
}

func (t *Trader) notifyError(ctx context.Context, msg string, err error) {
	if t.notifier == nil {
		return
	}
	if nerr := t.notifier.NotifyError(ctx, msg, err); nerr != nil {
		slog.Warn("trade: notifier error", "err", nerr)
	}
}
