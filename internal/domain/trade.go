package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode es el entorno de ejecución de un batch.
type Mode string

const (
	ModeLive Mode = "LIVE"
	ModeDemo Mode = "DEMO"
	ModeDry  Mode = "DRY RUN"
)

// ParseMode acepta live, demo o dry (sin distinguir mayúsculas).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "prod":
		return ModeLive, nil
	case "demo":
		return ModeDemo, nil
	case "dry", "dry-run", "dry run", "dryrun", "":
		return ModeDry, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// SettlementResult es el estado de liquidación de un trade.
type SettlementResult string

const (
	ResultPending SettlementResult = "pending"
	ResultWin     SettlementResult = "win"
	ResultLoss    SettlementResult = "loss"
)

// YesPrice convierte el costo de cruce de side en el yes-price de la orden.
func YesPrice(side Side, cost int) int {
	if side == SideNo {
		return 100 - cost
	}
	return cost
}

// CostFor es el costo total en centavos: price×count para YES y
// (100−price)×count para NO, con price el yes-price.
func CostFor(side Side, yesPrice, count int) int {
	if side == SideNo {
		return (100 - yesPrice) * count
	}
	return yesPrice * count
}

// PotentialProfit es el payout ganador menos el costo.
func PotentialProfit(count, cost int) int { return 100*count - cost }

// CandidateBet es una propuesta con precio, aún sin validar.
type CandidateBet struct {
	TargetDate time.Time
	Contract   Contract
	Title      string
	Side       Side
	Cost       int // costo de cruce por contrato, centavos
	Prob       float64
	HasProb    bool // el guardrail de EV negativo sólo corre si hay probabilidad
	Source     ProbSource
	EV         float64 // centavos por contrato
	Count      int

	ForecastHigh *float64
	ForecastLow  *float64
	Ensemble     EnsembleStats
}

func (b CandidateBet) Ticker() string { return b.Contract.Ticker }
func (b CandidateBet) City() City     { return b.Contract.City }

// TotalCost del bet al tamaño actual.
func (b CandidateBet) TotalCost() int { return b.Cost * b.Count }

// OrderRequest es lo que el pipeline de guardrails entrega al executor.
type OrderRequest struct {
	Ticker   string
	Side     Side
	YesPrice int
	Count    int
	DryRun   bool
}

// OrderResult es lo que el executor sabe de la orden enviada.
type OrderResult struct {
	OrderID   string
	Status    string
	Filled    bool
	FillCount int
	DryRun    bool
}

// ExecutedTrade es una fila del ledger.
type ExecutedTrade struct {
	ID         int64
	Timestamp  time.Time
	Mode       Mode
	TargetDate time.Time
	City       City
	Ticker     string
	Title      string
	Side       Side
	YesPrice   int
	Count      int
	CostCents  int
	Potential  int

	ForecastHigh *float64
	ForecastLow  *float64
	EstProb      float64
	EVCents      float64
	Source       ProbSource
	Ensemble     EnsembleStats

	Filled  bool
	OrderID string
	DryRun  bool

	Result       SettlementResult
	PayoutCents  int
	ObservedHigh *float64
	ObservedLow  *float64
}

// NewExecutedTrade arma la fila del ledger de una apuesta admitida y su orden.
func NewExecutedTrade(now time.Time, mode Mode, bet CandidateBet, res OrderResult) ExecutedTrade {
	yes := YesPrice(bet.Side, bet.Cost)
	cost := CostFor(bet.Side, yes, bet.Count)
	return ExecutedTrade{
		Timestamp:    now,
		Mode:         mode,
		TargetDate:   bet.TargetDate,
		City:         bet.City(),
		Ticker:       bet.Ticker(),
		Title:        bet.Title,
		Side:         bet.Side,
		YesPrice:     yes,
		Count:        bet.Count,
		CostCents:    cost,
		Potential:    PotentialProfit(bet.Count, cost),
		ForecastHigh: bet.ForecastHigh,
		ForecastLow:  bet.ForecastLow,
		EstProb:      bet.Prob,
		EVCents:      bet.EV,
		Source:       bet.Source,
		Ensemble:     bet.Ensemble,
		Filled:       res.Filled,
		OrderID:      res.OrderID,
		DryRun:       res.DryRun,
		Result:       ResultPending,
	}
}

// Net es payout menos costo, una vez liquidado.
func (t ExecutedTrade) Net() int { return t.PayoutCents - t.CostCents }

// Forecast devuelve el pronóstico puntual guardado para kind.
func (t ExecutedTrade) Forecast(kind TemperatureKind) (float64, bool) {
	return Forecast{HighF: t.ForecastHigh, LowF: t.ForecastLow}.Point(kind)
}

// Observed devuelve la observación guardada para kind.
func (t ExecutedTrade) Observed(kind TemperatureKind) (float64, bool) {
	return Observation{HighF: t.ObservedHigh, LowF: t.ObservedLow}.Value(kind)
}

// Position es un par (ticker, side) ya tomado para un día.
type Position struct {
	Ticker string
	Side   Side
}

// RunSummary es una fila de la tabla runs.
type RunSummary struct {
	Timestamp     time.Time
	Mode          Mode
	TargetDate    time.Time
	Cities        []City
	TradesPlaced  int
	TradesSkipped int
	TotalCost     int
	BalanceBefore *int
	BalanceAfter  *int
}

// PnL agrega los trades liquidados.
type PnL struct {
	Settled     int
	Wins        int
	Losses      int
	Pending     int
	CostCents   int
	PayoutCents int
}

// Net devuelve el P&L neto en centavos.
func (p PnL) Net() int { return p.PayoutCents - p.CostCents }

// WinRate es wins/settled; 0 si no hay liquidados.
func (p PnL) WinRate() float64 {
	if p.Settled == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Settled)
}
