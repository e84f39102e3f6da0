package domain

import "fmt"

// Side es el lado del contrato que toma una apuesta.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Opposite devuelve el otro lado.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// ParseSide acepta "yes"/"no" tal como se guardan en el ledger.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideYes, SideNo:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// ExpectedValue es la ganancia esperada en centavos por contrato al comprar
// side a cost, con p = P(YES).
func ExpectedValue(p float64, side Side, cost int) float64 {
	c := float64(cost)
	if side == SideNo {
		p = 1 - p
	}
	return p*(100-c) - (1-p)*c
}

// Quote es un lado con precio de un contrato.
type Quote struct {
	Side Side
	Cost int     // costo de cruce en centavos
	EV   float64 // centavos por contrato
}

// Quotes devuelve los lados operables del book. Un lado cuyo book opuesto
// está vacío no aparece; no se cotiza a cero.
func Quotes(p float64, book OrderBook) []Quote {
	var out []Quote
	for _, side := range []Side{SideYes, SideNo} {
		cost, ok := book.CrossingCost(side)
		if !ok {
			continue
		}
		out = append(out, Quote{Side: side, Cost: cost, EV: ExpectedValue(p, side, cost)})
	}
	return out
}

// BestQuote elige el lado de mayor EV si alcanza minEdge centavos.
func BestQuote(p float64, book OrderBook, minEdge float64) (Quote, bool) {
	var best Quote
	found := false
	for _, q := range Quotes(p, book) {
		if q.EV < minEdge {
			continue
		}
		if !found || q.EV > best.EV {
			best, found = q, true
		}
	}
	return best, found
}
