package domain

import "math"

// RoundObserved redondea la lectura al grado entero con que se liquida.
// Los empates se alejan de cero (38.5 → 39, −0.5 → −1).
func RoundObserved(f float64) int { return int(math.Round(f)) }

// ConditionHolds evalúa la condición contra una lectura ya redondeada.
// Los brackets son inclusivos en ambos extremos; los umbrales, estrictos.
func ConditionHolds(c Contract, observed int) bool {
	switch {
	case c.Shape == ShapeBracket:
		return observed >= c.LowBound() && observed <= c.HighBound()
	case c.Direction == DirectionBelow:
		return observed < c.Threshold()
	default:
		return observed > c.Threshold()
	}
}

// Evaluate resuelve side contra el extremo observado. obs se redondea
// aquí, una sola vez.
func Evaluate(c Contract, side Side, obs float64) SettlementResult {
	holds := ConditionHolds(c, RoundObserved(obs))
	if holds == (side == SideYes) {
		return ResultWin
	}
	return ResultLoss
}

// Payout es 100 centavos por contrato si gana.
func Payout(result SettlementResult, count int) int {
	if result == ResultWin {
		return 100 * count
	}
	return 0
}
