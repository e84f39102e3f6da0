package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// PositionReader is the part of the ledger the guardrails read.
type PositionReader interface {
	ExistingPositions(ctx context.Context, date time.Time) ([]domain.Position, error)
	CityBetCounts(ctx context.Context, date time.Time) (map[domain.City]int, error)
}

// RunContext is the mutable state one run owns: cents committed so far,
// bets admitted per city and the positions held for the target date.
// Build a fresh one per run; it is not safe for concurrent use.
type RunContext struct {
	TargetDate time.Time

	spent        int
	runCounts    map[domain.City]int
	ledgerCounts map[domain.City]int
	positions    map[domain.Position]bool
}

// NewRunContext snapshots the ledger state for date.
func NewRunContext(ctx context.Context, ledger PositionReader, date time.Time) (*RunContext, error) {
	positions, err := ledger.ExistingPositions(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("risk.NewRunContext: %w", err)
	}
	counts, err := ledger.CityBetCounts(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("risk.NewRunContext: %w", err)
	}
	return newRunContext(date, positions, counts), nil
}

func newRunContext(date time.Time, positions []domain.Position, counts map[domain.City]int) *RunContext {
	rc := &RunContext{
		TargetDate:   date,
		runCounts:    make(map[domain.City]int),
		ledgerCounts: make(map[domain.City]int, len(counts)),
		positions:    make(map[domain.Position]bool, len(positions)),
	}
	for c, n := range counts {
		rc.ledgerCounts[c] = n
	}
	for _, p := range positions {
		rc.positions[p] = true
	}
	return rc
}

// Spent returns the cents committed during this run.
func (rc *RunContext) Spent() int { return rc.spent }

// Holds reports whether ticker/side is already held for the date,
// in the ledger or admitted earlier in this run.
func (rc *RunContext) Holds(ticker string, side domain.Side) bool {
	return rc.positions[domain.Position{Ticker: ticker, Side: side}]
}

// CityBets counts ledger rows plus bets admitted this run for city.
func (rc *RunContext) CityBets(c domain.City) int {
	return rc.ledgerCounts[c] + rc.runCounts[c]
}

// RunBets counts only the bets admitted this run for city.
func (rc *RunContext) RunBets(c domain.City) int { return rc.runCounts[c] }

func (rc *RunContext) admit(bet domain.CandidateBet) {
	rc.spent += bet.TotalCost()
	rc.runCounts[bet.City()]++
	rc.positions[domain.Position{Ticker: bet.Ticker(), Side: bet.Side}] = true
}
