package domain

import "time"

// RejectedBet es un candidato que rechazaron los guardrails.
type RejectedBet struct {
	Bet    CandidateBet
	Reason string
	Detail string
}

// SkippedItem registra una ciudad o contrato excluido del batch y el motivo.
type SkippedItem struct {
	City   City
	Ticker string // vacío si se saltó la ciudad entera
	Reason string
}

// RunReport es todo lo que produjo un batch de trading.
type RunReport struct {
	Mode          Mode
	TargetDate    time.Time
	Placed        []ExecutedTrade
	Rejected      []RejectedBet
	Skipped       []SkippedItem
	Failed        []RejectedBet // admitido, pero la orden falló
	TotalCost     int
	BalanceBefore *int
	BalanceAfter  *int
}

// SettlementReport es el resultado de liquidar un día.
type SettlementReport struct {
	TargetDate  time.Time
	Settled     []ExecutedTrade // con Result, PayoutCents y observaciones
	Unparseable []string        // tickers salteados
	MissingObs  []City
}

// Net suma payout menos costo de los trades liquidados.
func (r SettlementReport) Net() int {
	n := 0
	for _, t := range r.Settled {
		n += t.Net()
	}
	return n
}

// Wins cuenta los trades ganados.
func (r SettlementReport) Wins() int {
	n := 0
	for _, t := range r.Settled {
		if t.Result == ResultWin {
			n++
		}
	}
	return n
}
