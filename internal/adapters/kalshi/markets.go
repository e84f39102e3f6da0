package kalshi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

const eventsPageLimit = "50"

// FetchMarkets devuelve los mercados abiertos de la serie cuyo evento liquida en date.
func (c *Client) FetchMarkets(ctx context.Context, series string, date time.Time) ([]domain.Market, error) {
	suffix := "-" + domain.Datecode(date)
	q := url.Values{
		"series_ticker":       {series},
		"status":              {"open"},
		"with_nested_markets": {"true"},
		"limit":               {eventsPageLimit},
	}

	var out []domain.Market
	for {
		var resp eventsResponse
		if err := c.http.Get(ctx, apiPrefix+"/events", q, &resp); err != nil {
			return nil, fmt.Errorf("kalshi.FetchMarkets: %s: %w", series, err)
		}
		for _, ev := range resp.Events {
			if !strings.HasSuffix(ev.EventTicker, suffix) {
				continue
			}
			for _, m := range ev.Markets {
				if !tradable(m.Status) {
					continue
				}
				out = append(out, toMarket(ev, m))
			}
		}
		if resp.Cursor == "" {
			break
		}
		q.Set("cursor", resp.Cursor)
	}
	return out, nil
}

func tradable(status string) bool {
	switch status {
	case "", "open", "active":
		return true
	}
	return false
}

func toMarket(ev apiEvent, m apiMarket) domain.Market {
	sub := m.YesSubTitle
	if sub == "" {
		sub = m.Subtitle
	}
	eventTicker := m.EventTicker
	if eventTicker == "" {
		eventTicker = ev.EventTicker
	}
	return domain.Market{
		Ticker:      m.Ticker,
		EventTicker: eventTicker,
		Title:       m.Title,
		YesSubTitle: sub,
		Status:      m.Status,
	}
}

// FetchOrderBook devuelve el book de un contrato.
func (c *Client) FetchOrderBook(ctx context.Context, ticker string) (domain.OrderBook, error) {
	var resp orderbookResponse
	if err := c.http.Get(ctx, apiPrefix+"/markets/"+url.PathEscape(ticker)+"/orderbook", nil, &resp); err != nil {
		return domain.OrderBook{}, fmt.Errorf("kalshi.FetchOrderBook: %s: %w", ticker, err)
	}
	return domain.OrderBook{
		Ticker: ticker,
		Yes:    toLevels(resp.Orderbook.Yes),
		No:     toLevels(resp.Orderbook.No),
	}, nil
}

func toLevels(raw [][2]int) []domain.PriceLevel {
	if len(raw) == 0 {
		return nil
	}
	out := make([]domain.PriceLevel, 0, len(raw))
	for _, l := range raw {
		out = append(out, domain.PriceLevel{Price: l[0], Count: l[1]})
	}
	return out
}
