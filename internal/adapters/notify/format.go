package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// Dollars formatea centavos como "$1.23" (o "-$1.23").
func Dollars(cents int) string {
	d := decimal.New(int64(cents), -2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// SignedDollars siempre lleva signo, para columnas de P&L.
func SignedDollars(cents int) string {
	if cents >= 0 {
		return "+" + Dollars(cents)
	}
	return Dollars(cents)
}

func pct(p float64) string { return fmt.Sprintf("%.1f%%", p*100) }

func temp(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f°F", *p)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// compactName trunca un string a maxLen runas.
func compactName(s string, maxLen int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= maxLen {
		return string(r)
	}
	return string(r[:maxLen-1]) + "…"
}

func tradeLine(t domain.ExecutedTrade) string {
	return fmt.Sprintf("%s `%s` -- %s @ %dc x%d -- cost %s / win %s",
		t.City, t.Ticker, strings.ToUpper(string(t.Side)), t.YesPrice, t.Count,
		Dollars(t.CostCents), Dollars(t.Potential))
}
