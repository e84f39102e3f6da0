package risk

import (
	"fmt"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// Rejection reasons, in evaluation order.
const (
	ReasonPriceBand     = "price_band"
	ReasonDuplicate     = "duplicate"
	ReasonContradiction = "contradiction"
	ReasonCityCap       = "city_cap"
	ReasonNegativeEV    = "negative_ev"
	ReasonSpendCap      = "spend_cap"
)

// Rejection is a named guardrail failure. It is always recoverable: the run
// moves on to the next candidate.
type Rejection struct {
	Reason string
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("guardrail %s: %s", r.Reason, r.Detail)
}

func reject(reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Guardrail is one (reason, predicate) pair. Check may shrink bet.Count;
// it returns nil when the bet passes.
type Guardrail struct {
	Reason string
	Check  func(l Limits, rc *RunContext, bet *domain.CandidateBet) *Rejection
}

// Guardrails returns the checks in the order they are evaluated. The first
// failure wins.
func Guardrails() []Guardrail {
	return []Guardrail{
		{ReasonPriceBand, checkPriceBand},
		{ReasonDuplicate, checkDuplicate},
		{ReasonContradiction, checkContradiction},
		{ReasonCityCap, checkCityCap},
		{ReasonNegativeEV, checkNegativeEV},
		{ReasonSpendCap, checkSpendCap},
	}
}

func checkPriceBand(l Limits, _ *RunContext, bet *domain.CandidateBet) *Rejection {
	if bet.Cost < l.MinPriceCents {
		return reject(ReasonPriceBand, "%s costs %dc, below the %dc longshot floor", bet.Ticker(), bet.Cost, l.MinPriceCents)
	}
	if bet.Cost > l.MaxPriceCents {
		return reject(ReasonPriceBand, "%s costs %dc, above the %dc ceiling (risk %dc to win %dc)",
			bet.Ticker(), bet.Cost, l.MaxPriceCents, bet.Cost, 100-bet.Cost)
	}
	return nil
}

func checkDuplicate(_ Limits, rc *RunContext, bet *domain.CandidateBet) *Rejection {
	if rc.Holds(bet.Ticker(), bet.Side) {
		return reject(ReasonDuplicate, "already holding %s %s for %s",
			bet.Ticker(), bet.Side, domain.FormatDate(rc.TargetDate))
	}
	return nil
}

func checkContradiction(_ Limits, rc *RunContext, bet *domain.CandidateBet) *Rejection {
	if opp := bet.Side.Opposite(); rc.Holds(bet.Ticker(), opp) {
		return reject(ReasonContradiction, "holding %s %s, refusing to buy %s",
			bet.Ticker(), opp, bet.Side)
	}
	return nil
}

func checkCityCap(l Limits, rc *RunContext, bet *domain.CandidateBet) *Rejection {
	if n := rc.CityBets(bet.City()); n >= l.MaxBetsPerCity {
		return reject(ReasonCityCap, "%s already has %d bets for %s (max %d)",
			bet.City(), n, domain.FormatDate(rc.TargetDate), l.MaxBetsPerCity)
	}
	return nil
}

func checkNegativeEV(_ Limits, _ *RunContext, bet *domain.CandidateBet) *Rejection {
	if !bet.HasProb {
		return nil
	}
	if ev := domain.ExpectedValue(bet.Prob, bet.Side, bet.Cost); ev < 0 {
		return reject(ReasonNegativeEV, "%s %s at %dc has EV %.1fc with P(yes)=%.3f",
			bet.Ticker(), bet.Side, bet.Cost, ev, bet.Prob)
	}
	return nil
}

func checkSpendCap(l Limits, rc *RunContext, bet *domain.CandidateBet) *Rejection {
	remaining := l.MaxRunCents - rc.Spent()
	if bet.TotalCost() <= remaining {
		return nil
	}
	affordable := 0
	if bet.Cost > 0 {
		affordable = remaining / bet.Cost
	}
	if affordable < 1 {
		return reject(ReasonSpendCap, "%s needs %dc, only %dc left of the %dc run cap",
			bet.Ticker(), bet.TotalCost(), max(0, remaining), l.MaxRunCents)
	}
	bet.Count = affordable
	return nil
}
