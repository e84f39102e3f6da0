package risk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/ports"
)

// TradeLogger appends executed trades to the ledger.
type TradeLogger interface {
	LogTrade(ctx context.Context, t domain.ExecutedTrade) (int64, error)
}

// Pipeline admits or rejects candidate bets for one run and executes the
// admitted ones.
type Pipeline struct {
	limits   Limits
	checks   []Guardrail
	rc       *RunContext
	executor ports.OrderExecutor
	ledger   TradeLogger
	mode     domain.Mode
	now      func() time.Time
}

// NewPipeline wires a pipeline around the run's context.
func NewPipeline(limits Limits, rc *RunContext, executor ports.OrderExecutor, ledger TradeLogger, mode domain.Mode) *Pipeline {
	return &Pipeline{
		limits:   limits,
		checks:   Guardrails(),
		rc:       rc,
		executor: executor,
		ledger:   ledger,
		mode:     mode,
		now:      time.Now,
	}
}

// RunContext exposes the run state, mostly for reporting.
func (p *Pipeline) RunContext() *RunContext { return p.rc }

// Evaluate sizes bet and runs every guardrail in order without side effects.
// The returned bet carries the final contract count. A failure is a
// *Rejection.
func (p *Pipeline) Evaluate(bet domain.CandidateBet) (domain.CandidateBet, error) {
	if size := p.limits.Size(bet.Cost); bet.Count <= 0 || bet.Count > size {
		bet.Count = size
	}
	for _, g := range p.checks {
		if r := g.Check(p.limits, p.rc, &bet); r != nil {
			return bet, r
		}
	}
	return bet, nil
}

// Admit evaluates bet, places the order and records it. Rejections come
// back as *Rejection and leave the run state untouched, as do order
// failures. Once the exchange accepted the order its cost counts toward
// the run even if writing the ledger row fails.
func (p *Pipeline) Admit(ctx context.Context, bet domain.CandidateBet) (domain.ExecutedTrade, error) {
	bet, err := p.Evaluate(bet)
	if err != nil {
		return domain.ExecutedTrade{}, err
	}

	req := domain.OrderRequest{
		Ticker:   bet.Ticker(),
		Side:     bet.Side,
		YesPrice: domain.YesPrice(bet.Side, bet.Cost),
		Count:    bet.Count,
		DryRun:   p.mode == domain.ModeDry,
	}
	res, err := p.executor.PlaceOrder(ctx, req)
	if err != nil {
		return domain.ExecutedTrade{}, fmt.Errorf("risk.Admit: place %s: %w", bet.Ticker(), err)
	}

	p.rc.admit(bet)
	slog.Info("risk: bet admitted",
		"ticker", bet.Ticker(), "side", bet.Side, "cost", bet.Cost, "count", bet.Count,
		"ev", fmt.Sprintf("%.1f", bet.EV), "spent", p.rc.Spent(), "cap", p.limits.MaxRunCents,
		"status", res.Status)

	trade := domain.NewExecutedTrade(p.now(), p.mode, bet, res)
	id, err := p.ledger.LogTrade(ctx, trade)
	if err != nil {
		return trade, fmt.Errorf("risk.Admit: log %s: %w", bet.Ticker(), err)
	}
	trade.ID = id
	return trade, nil
}
