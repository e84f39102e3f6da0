// Package risk holds the hard pre-trade guardrails. Nothing in here consults
// the probability model except the negative-EV check, and no model output can
// override a rejection.
package risk

import "fmt"

// Limits are the fixed guardrail thresholds. All money is in cents.
type Limits struct {
	MinPriceCents        int // longshot floor
	MaxPriceCents        int // risk/reward ceiling
	MaxBetsPerCity       int // ledger rows + admitted this run, per date
	MaxContractsPerOrder int
	MaxBetCents          int // per-bet budget used for sizing
	MaxRunCents          int // cumulative ceiling for one run
}

// DefaultLimits mirrors the exchange-side guardrails: 15..85c, 5 contracts,
// $5 per bet, $4 per run, two bets per city.
func DefaultLimits() Limits {
	return Limits{
		MinPriceCents:        15,
		MaxPriceCents:        85,
		MaxBetsPerCity:       2,
		MaxContractsPerOrder: 5,
		MaxBetCents:          500,
		MaxRunCents:          400,
	}
}

// Validate rejects inconsistent limits.
func (l Limits) Validate() error {
	switch {
	case l.MinPriceCents < 1 || l.MaxPriceCents > 99:
		return fmt.Errorf("risk: price band %d..%d outside 1..99", l.MinPriceCents, l.MaxPriceCents)
	case l.MinPriceCents > l.MaxPriceCents:
		return fmt.Errorf("risk: min price %d above max price %d", l.MinPriceCents, l.MaxPriceCents)
	case l.MaxBetsPerCity < 1:
		return fmt.Errorf("risk: max bets per city must be >= 1")
	case l.MaxContractsPerOrder < 1:
		return fmt.Errorf("risk: max contracts per order must be >= 1")
	case l.MaxBetCents < 1 || l.MaxRunCents < 1:
		return fmt.Errorf("risk: bet and run budgets must be positive")
	}
	return nil
}

// Size returns the contract count for one bet at cost cents per contract:
// the per-order cap or the largest count that fits the per-bet budget,
// whichever is smaller, and never less than one.
func (l Limits) Size(cost int) int {
	if cost <= 0 {
		return 1
	}
	return max(1, min(l.MaxContractsPerOrder, l.MaxBetCents/cost))
}
