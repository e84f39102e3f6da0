package trader_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/adapters/storage"
	"github.com/alejandrodnm/wxtrader/internal/application/risk"
	"github.com/alejandrodnm/wxtrader/internal/application/trader"
	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, time.February, 12, 0, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

type fakeForecasts map[domain.City]domain.Forecast

func (ff fakeForecasts) FetchForecast(_ context.Context, c domain.City, _ time.Time) (domain.Forecast, error) {
	fc, ok := ff[c]
	if !ok {
		return domain.Forecast{}, fmt.Errorf("no forecast for %s", c)
	}
	return fc, nil
}

type fakeMarkets struct {
	series map[string][]domain.Market
	books  map[string]domain.OrderBook
}

func (m *fakeMarkets) FetchMarkets(_ context.Context, series string, _ time.Time) ([]domain.Market, error) {
	return m.series[series], nil
}

func (m *fakeMarkets) FetchOrderBook(_ context.Context, ticker string) (domain.OrderBook, error) {
	ob, ok := m.books[ticker]
	if !ok {
		return domain.OrderBook{}, errors.New("not found")
	}
	return ob, nil
}

type fakeExecutor struct{ orders []domain.OrderRequest }

func (e *fakeExecutor) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	e.orders = append(e.orders, req)
	return domain.OrderResult{OrderID: fmt.Sprintf("ord-%d", len(e.orders)), Status: "executed", Filled: true, FillCount: req.Count}, nil
}

func (e *fakeExecutor) GetBalance(context.Context) (int, error) { return 10_000, nil }

type captureNotifier struct {
	runs   []domain.RunReport
	errors []string
}

func (n *captureNotifier) NotifyRun(_ context.Context, r domain.RunReport) error {
	n.runs = append(n.runs, r)
	return nil
}

func (n *captureNotifier) NotifySettlements(context.Context, domain.SettlementReport) error {
	return nil
}

func (n *captureNotifier) NotifyError(_ context.Context, msg string, _ error) error {
	n.errors = append(n.errors, msg)
	return nil
}

func levels(prices ...int) []domain.PriceLevel {
	var out []domain.PriceLevel
	for _, p := range prices {
		out = append(out, domain.PriceLevel{Price: p, Count: 10})
	}
	return out
}

// chicagoMarkets: forecast high 38°F, winter SD 4.0.
//   - T38 above: P≈0.450; NO crosses at 45c for EV≈+10c.
//   - B37.5 [37,38]: P≈0.196; YES crosses at 10c for EV≈+9.6c, a longshot.
//   - T45 above: P≈0.04; nothing tradable with edge.
func chicagoMarkets() *fakeMarkets {
	return &fakeMarkets{
		series: map[string][]domain.Market{
			"KXHIGHCHI": {
				{Ticker: "KXHIGHCHI-26FEB12-T38", YesSubTitle: "39° or above"},
				{Ticker: "KXHIGHCHI-26FEB12-B37.5", YesSubTitle: "37° to 38°"},
				{Ticker: "KXHIGHCHI-26FEB12-T45", YesSubTitle: "46° or above"},
				{Ticker: "KXHIGHCHI-26FEB12-X99", YesSubTitle: "mystery"},
			},
		},
		books: map[string]domain.OrderBook{
			"KXHIGHCHI-26FEB12-T38":   {Yes: levels(50, 55), No: levels(30)},
			"KXHIGHCHI-26FEB12-B37.5": {Yes: levels(5), No: levels(85, 90)},
			"KXHIGHCHI-26FEB12-T45":   {Yes: levels(3), No: levels(96)},
		},
	}
}

func newTrader(t *testing.T, markets *fakeMarkets, ex *fakeExecutor, n *captureNotifier, m *metrics.Recorder) (*trader.Trader, *storage.SQLiteLedger) {
	t.Helper()
	l, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	forecasts := fakeForecasts{domain.Chicago: {City: domain.Chicago, HighF: f(38), LowF: f(20)}}
	cfg := trader.Config{
		Mode:         domain.ModeLive,
		Cities:       []domain.City{domain.Chicago, domain.NewYork},
		MinEdgeCents: 5,
		Limits:       risk.DefaultLimits(),
		SD:           domain.DefaultSDTable(),
	}
	return trader.New(forecasts, markets, ex, l, n, m, cfg), l
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	ex := &fakeExecutor{}
	n := &captureNotifier{}
	m := metrics.New()
	tr, ledger := newTrader(t, chicagoMarkets(), ex, n, m)

	report, err := tr.Run(ctx, day)
	require.NoError(t, err)

	require.Len(t, report.Placed, 1)
	placed := report.Placed[0]
	assert.Equal(t, "KXHIGHCHI-26FEB12-T38", placed.Ticker)
	assert.Equal(t, domain.SideNo, placed.Side)
	assert.Equal(t, 55, placed.YesPrice)
	assert.Equal(t, 5, placed.Count)
	assert.Equal(t, 225, placed.CostCents)
	assert.Equal(t, domain.SourceParametric, placed.Source)
	assert.InDelta(t, 0.450, placed.EstProb, 1e-3)
	assert.Equal(t, 225, report.TotalCost)

	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "KXHIGHCHI-26FEB12-B37.5", report.Rejected[0].Bet.Ticker())
	assert.Equal(t, risk.ReasonPriceBand, report.Rejected[0].Reason)

	var skipped []string
	for _, s := range report.Skipped {
		skipped = append(skipped, string(s.City)+" "+s.Ticker+" "+s.Reason)
	}
	assert.Contains(t, skipped, "CHI KXHIGHCHI-26FEB12-X99 unparseable ticker")
	assert.Contains(t, skipped, "NYC  forecast unavailable")

	require.Len(t, ex.orders, 1)
	assert.Equal(t, domain.OrderRequest{Ticker: "KXHIGHCHI-26FEB12-T38", Side: domain.SideNo, YesPrice: 55, Count: 5}, ex.orders[0])

	require.NotNil(t, report.BalanceBefore)
	require.NotNil(t, report.BalanceAfter)

	history, err := ledger.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ord-1", history[0].OrderID)
	require.NotNil(t, history[0].ForecastHigh)
	assert.Equal(t, 38.0, *history[0].ForecastHigh)

	runs, err := ledger.Runs(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].TradesPlaced)

	require.Len(t, n.runs, 1)
	assert.Contains(t, n.errors, "NYC skipped")

	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "wxtrader_bets_placed_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "wxtrader_bets_rejected_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "wxtrader_city_skipped_total"))
}

func TestRun_SecondRunDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	ex := &fakeExecutor{}
	tr, _ := newTrader(t, chicagoMarkets(), ex, &captureNotifier{}, nil)

	_, err := tr.Run(ctx, day)
	require.NoError(t, err)

	report, err := tr.Run(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, report.Placed)
	reasons := map[string]bool{}
	for _, r := range report.Rejected {
		reasons[r.Reason] = true
	}
	assert.True(t, reasons[risk.ReasonDuplicate])
	assert.Len(t, ex.orders, 1)
}

func TestRun_NothingToTradeIsSuccess(t *testing.T) {
	markets := &fakeMarkets{}
	tr, ledger := newTrader(t, markets, &fakeExecutor{}, &captureNotifier{}, nil)

	report, err := tr.Run(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, report.Placed)
	assert.Empty(t, report.Rejected)

	runs, err := ledger.Runs(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRun_PrefersEnsemble(t *testing.T) {
	ctx := context.Background()
	ex := &fakeExecutor{}

	// Twelve members all at 41-42°F: T38 above is a near-certain YES.
	members := []float64{41, 41.2, 41.5, 41.8, 42, 42.1, 41.1, 41.9, 41.4, 41.6, 41.3, 41.7}
	tr := trader.New(
		fakeForecasts{domain.Chicago: {City: domain.Chicago, HighF: f(38), EnsembleHigh: members}},
		chicagoMarkets(), ex, mustLedger(t), nil, nil,
		trader.Config{Mode: domain.ModeLive, Cities: []domain.City{domain.Chicago}, MinEdgeCents: 5,
			Limits: risk.DefaultLimits(), SD: domain.DefaultSDTable()},
	)

	report, err := tr.Run(ctx, day)
	require.NoError(t, err)
	require.NotEmpty(t, report.Placed)
	first := report.Placed[0]
	assert.Equal(t, "KXHIGHCHI-26FEB12-T38", first.Ticker)
	assert.Equal(t, domain.SideYes, first.Side)
	assert.Equal(t, domain.SourceEmpirical, first.Source)
	assert.Equal(t, 12, first.Ensemble.Members)
}

func mustLedger(t *testing.T) *storage.SQLiteLedger {
	t.Helper()
	l, err := storage.NewSQLiteLedger(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRun_SkipsKeepCityOrder(t *testing.T) {
	cities := []domain.City{domain.NewYork, domain.Miami, domain.Austin, domain.Denver, domain.LosAngeles}
	n := &captureNotifier{}
	tr := trader.New(
		fakeForecasts{}, &fakeMarkets{}, &fakeExecutor{}, mustLedger(t), n, nil,
		trader.Config{Mode: domain.ModeDry, Cities: cities, MinEdgeCents: 5,
			Limits: risk.DefaultLimits(), SD: domain.DefaultSDTable(), Workers: 3},
	)

	report, err := tr.Run(context.Background(), day)
	require.NoError(t, err)

	var got []domain.City
	for _, s := range report.Skipped {
		got = append(got, s.City)
	}
	assert.Equal(t, cities, got)
	assert.Equal(t, []string{"NYC skipped", "MIA skipped", "AUS skipped", "DEN skipped", "LAX skipped"}, n.errors)
}
