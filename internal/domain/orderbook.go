package domain

// OrderBook es el libro de órdenes de un contrato, en centavos.
// Kalshi publica solo bids: un bid NO a p equivale a un ask YES a 100−p.
type OrderBook struct {
	Ticker string
	Yes    []PriceLevel // bids YES, ascendentes por precio
	No     []PriceLevel // bids NO, ascendentes por precio
}

// PriceLevel es un nivel de precio del book.
type PriceLevel struct {
	Price int // centavos, 1..99
	Count int
}

// BestYesBid devuelve el mayor bid YES. ok=false si no hay interés.
func (ob OrderBook) BestYesBid() (int, bool) { return bestBid(ob.Yes) }

// BestNoBid devuelve el mayor bid NO. ok=false si no hay interés.
func (ob OrderBook) BestNoBid() (int, bool) { return bestBid(ob.No) }

func bestBid(levels []PriceLevel) (int, bool) {
	best, ok := 0, false
	for _, l := range levels {
		if l.Count <= 0 {
			continue
		}
		if !ok || l.Price > best {
			best, ok = l.Price, true
		}
	}
	return best, ok
}

// CrossingCost es el precio por contrato para tomar side ya mismo:
// YES cuesta 100 − mejor bid NO y NO cuesta 100 − mejor bid YES.
// ok=false si el lado opuesto del book está vacío.
func (ob OrderBook) CrossingCost(side Side) (int, bool) {
	var bid int
	var ok bool
	if side == SideYes {
		bid, ok = ob.BestNoBid()
	} else {
		bid, ok = ob.BestYesBid()
	}
	if !ok {
		return 0, false
	}
	return 100 - bid, true
}

// Spread devuelve (ask YES − bid YES) en centavos; ok=false si falta un lado.
func (ob OrderBook) Spread() (int, bool) {
	yesBid, ok1 := ob.BestYesBid()
	yesAsk, ok2 := ob.CrossingCost(SideYes)
	if !ok1 || !ok2 {
		return 0, false
	}
	return yesAsk - yesBid, true
}
