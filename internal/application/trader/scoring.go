package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// scoreCity pone precio a cada contrato abierto de la ciudad y agrega a sc
// los que vale la pena proponer. Los problemas por contrato quedan como
// skips; sólo se devuelve el error que inutiliza la ciudad entera.
func (t *Trader) scoreCity(ctx context.Context, ci domain.CityInfo, date time.Time, sc *cityScore) error {
	fc, err := t.forecasts.FetchForecast(ctx, ci.City, date)
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	season := domain.SeasonOf(date)
	ens := fc.Stats()

	for _, kind := range []domain.TemperatureKind{domain.KindHigh, domain.KindLow} {
		est, ok := fc.EstimateFor(kind, t.cfg.SD, season)
		if !ok {
			sc.skipped = append(sc.skipped, domain.SkippedItem{
				City: ci.City, Reason: fmt.Sprintf("no %s forecast", kind),
			})
			continue
		}

		series := ci.Series(kind)
		markets, err := t.markets.FetchMarkets(ctx, series, date)
		if err != nil {
			sc.skip(domain.SkippedItem{City: ci.City, Reason: "markets unavailable: " + series}, err)
			continue
		}
		slog.Debug("trade: markets loaded", "city", ci.City, "series", series, "count", len(markets),
			"source", est.Source())

		for _, m := range markets {
			c, err := m.Contract()
			if err != nil {
				sc.skip(domain.SkippedItem{City: ci.City, Ticker: m.Ticker, Reason: "unparseable ticker"}, err)
				continue
			}
			if c.Kind != kind || c.City != ci.City {
				continue
			}

			book, err := t.markets.FetchOrderBook(ctx, m.Ticker)
			if err != nil {
				sc.skip(domain.SkippedItem{City: ci.City, Ticker: m.Ticker, Reason: "order book unavailable"}, err)
				continue
			}

			p := domain.Probability(c, est)
			q, ok := domain.BestQuote(p, book, t.cfg.MinEdgeCents)
			if !ok {
				spread, _ := book.Spread()
				slog.Debug("trade: no edge", "ticker", m.Ticker, "p", fmt.Sprintf("%.3f", p), "spread", spread)
				continue
			}

			sc.bets = append(sc.bets, domain.CandidateBet{
				TargetDate:   date,
				Contract:     c,
				Title:        m.DisplayTitle(),
				Side:         q.Side,
				Cost:         q.Cost,
				Prob:         p,
				HasProb:      true,
				Source:       est.Source(),
				EV:           q.EV,
				ForecastHigh: fc.HighF,
				ForecastLow:  fc.LowF,
				Ensemble:     ens,
			})
		}
	}
	return nil
}

func (sc *cityScore) skip(item domain.SkippedItem, err error) {
	sc.skipped = append(sc.skipped, item)
	sc.problems = append(sc.problems, problem{item: item, err: err})
}

// logProblem loguea cada problema. Los tickers no parseables son ruido
// esperado y no van al notifier.
func (t *Trader) logProblem(ctx context.Context, p problem) {
	if errors.Is(p.err, domain.ErrUnparseableTicker) {
		slog.Warn("trade: skipping contract", "ticker", p.item.Ticker, "err", p.err)
		return
	}
	slog.Warn("trade: "+p.item.Reason, "city", p.item.City, "ticker", p.item.Ticker, "err", p.err)
	t.notifyError(ctx, fmt.Sprintf("%s %s %s", p.item.City, p.item.Ticker, p.item.Reason), p.err)
}
