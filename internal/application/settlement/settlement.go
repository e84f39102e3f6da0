// Package settlement resolves pending trades against observed temperatures.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/metrics"
	"github.com/alejandrodnm/wxtrader/internal/ports"
)

// ErrDateNotComplete is returned when asked to settle today or a future day:
// the observations for that day are necessarily incomplete.
var ErrDateNotComplete = errors.New("settlement: date is not complete yet")

// Ledger is the part of the trade ledger settlement needs.
type Ledger interface {
	PendingTrades(ctx context.Context, date time.Time) ([]domain.ExecutedTrade, error)
	UpdateSettlement(ctx context.Context, u ports.SettlementUpdate) (int64, error)
}

// Settler marks pending trades won or lost.
type Settler struct {
	ledger   Ledger
	obs      ports.ObservationProvider
	notifier ports.Notifier
	metrics  *metrics.Recorder
	loc      *time.Location
	now      func() time.Time
}

// Option configures a Settler.
type Option func(*Settler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Settler) { s.now = now } }

// WithMetrics records settled trades.
func WithMetrics(m *metrics.Recorder) Option { return func(s *Settler) { s.metrics = m } }

// WithNotifier reports settlements; nil disables notifications.
func WithNotifier(n ports.Notifier) Option { return func(s *Settler) { s.notifier = n } }

// New creates a Settler. loc defines "today" for the safety check.
func New(ledger Ledger, obs ports.ObservationProvider, loc *time.Location, opts ...Option) *Settler {
	if loc == nil {
		loc = time.UTC
	}
	s := &Settler{ledger: ledger, obs: obs, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle resolves every pending, filled, real-money trade for date. Trades
// already settled are never selected again, so a second call is a no-op.
func (s *Settler) Settle(ctx context.Context, date time.Time) (domain.SettlementReport, error) {
	report := domain.SettlementReport{TargetDate: date}
	defer s.metrics.RunFinished("settle", time.Now())

	today := domain.DateIn(s.now(), s.loc)
	if !domain.DateIn(date, time.UTC).Before(today) {
		return report, fmt.Errorf("settlement.Settle: %s (today is %s): %w",
			domain.FormatDate(date), domain.FormatDate(today), ErrDateNotComplete)
	}

	pending, err := s.ledger.PendingTrades(ctx, date)
	if err != nil {
		return report, fmt.Errorf("settlement.Settle: %w", err)
	}
	if len(pending) == 0 {
		slog.Info("settle: nothing pending", "date", domain.FormatDate(date))
		return report, nil
	}

	observations := make(map[domain.City]*domain.Observation)
	for _, t := range pending {
		c, err := domain.ParseContract(t.Ticker, t.Title)
		if err != nil {
			slog.Warn("settle: skipping unparseable ticker", "ticker", t.Ticker, "err", err)
			report.Unparseable = append(report.Unparseable, t.Ticker)
			continue
		}

		obs, seen := observations[c.City]
		if !seen {
			o, err := s.obs.FetchObservation(ctx, c.City, date)
			if err != nil {
				slog.Warn("settle: observation unavailable", "city", c.City, "err", err)
				report.MissingObs = append(report.MissingObs, c.City)
			} else {
				obs = &o
			}
			observations[c.City] = obs
		}
		if obs == nil {
			continue
		}

		settled, ok := Resolve(t, c, *obs)
		if !ok {
			slog.Warn("settle: no observed value for kind", "ticker", t.Ticker, "kind", c.Kind)
			continue
		}

		n, err := s.ledger.UpdateSettlement(ctx, ports.SettlementUpdate{
			Ticker:       t.Ticker,
			TargetDate:   date,
			Side:         t.Side,
			Result:       settled.Result,
			ObservedHigh: obs.HighF,
			ObservedLow:  obs.LowF,
		})
		if err != nil {
			return report, fmt.Errorf("settlement.Settle: %w", err)
		}
		if n == 0 {
			continue
		}

		slog.Info("settle: trade resolved",
			"ticker", t.Ticker, "side", t.Side, "condition", c.Describe(),
			"result", settled.Result, "net", settled.Net())
		s.metrics.Settled(string(settled.Result))
		report.Settled = append(report.Settled, settled)
	}

	s.metrics.SettlementNet(report.Net())
	if s.notifier != nil && len(report.Settled) > 0 {
		if err := s.notifier.NotifySettlements(ctx, report); err != nil {
			slog.Warn("settle: notifier error", "err", err)
		}
	}
	return report, nil
}

// Resolve evaluates one trade against the observation. ok is false when the
// observation lacks the extreme the contract settles on.
func Resolve(t domain.ExecutedTrade, c domain.Contract, obs domain.Observation) (domain.ExecutedTrade, bool) {
	value, ok := obs.Value(c.Kind)
	if !ok {
		return t, false
	}
	t.Result = domain.Evaluate(c, t.Side, value)
	t.PayoutCents = domain.Payout(t.Result, t.Count)
	t.ObservedHigh, t.ObservedLow = obs.HighF, obs.LowF
	return t, true
}
