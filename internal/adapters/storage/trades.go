package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/ports"
)

const tradeColumns = `
	id, timestamp, mode, target_date, city, ticker, title, side,
	yes_price_cents, cost_cents, contracts, potential_profit_cents,
	forecast_high_f, forecast_low_f, est_probability, expected_value_cents,
	filled, order_id, dry_run, settlement_result, payout_cents,
	observed_high_f, observed_low_f, prob_source, ensemble_member_count,
	ensemble_mean_high, ensemble_mean_low, ensemble_sd_high, ensemble_sd_low`

// LogTrade inserta una fila. cost y potential se recalculan desde side,
// yes price y count para que la fila sea siempre consistente.
func (s *SQLiteLedger) LogTrade(ctx context.Context, t domain.ExecutedTrade) (int64, error) {
	if _, err := domain.ParseSide(string(t.Side)); err != nil {
		return 0, fmt.Errorf("storage.LogTrade: %s: %w", t.Ticker, err)
	}
	cost := domain.CostFor(t.Side, t.YesPrice, t.Count)
	potential := domain.PotentialProfit(t.Count, cost)
	ts := t.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	result := t.Result
	if result == "" {
		result = domain.ResultPending
	}

	var members any
	if t.Ensemble.Members > 0 {
		members = t.Ensemble.Members
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
			(timestamp, mode, target_date, city, ticker, title, side,
			 yes_price_cents, cost_cents, contracts, potential_profit_cents,
			 forecast_high_f, forecast_low_f, est_probability, expected_value_cents,
			 filled, order_id, dry_run, settlement_result, payout_cents,
			 prob_source, ensemble_member_count,
			 ensemble_mean_high, ensemble_mean_low, ensemble_sd_high, ensemble_sd_low)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), string(t.Mode), domain.FormatDate(t.TargetDate),
		string(t.City), t.Ticker, t.Title, string(t.Side),
		t.YesPrice, cost, t.Count, potential,
		nullFloat(t.ForecastHigh), nullFloat(t.ForecastLow), t.EstProb, t.EVCents,
		boolToInt(t.Filled), t.OrderID, boolToInt(t.DryRun), string(result), t.PayoutCents,
		string(t.Source), members,
		nullFloat(t.Ensemble.MeanHigh), nullFloat(t.Ensemble.MeanLow),
		nullFloat(t.Ensemble.SDHigh), nullFloat(t.Ensemble.SDLow),
	)
	if err != nil {
		return 0, fmt.Errorf("storage.LogTrade: insert %s: %w", t.Ticker, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.LogTrade: last id: %w", err)
	}
	return id, nil
}

// ExistingPositions devuelve los pares (ticker, side) del día, sin dry runs.
func (s *SQLiteLedger) ExistingPositions(ctx context.Context, date time.Time) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT ticker, side FROM trades
		WHERE target_date = ? AND dry_run = 0`, domain.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("storage.ExistingPositions: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var p domain.Position
		var side string
		if err := rows.Scan(&p.Ticker, &side); err != nil {
			return nil, fmt.Errorf("storage.ExistingPositions: scan row: %w", err)
		}
		p.Side = domain.Side(side)
		out = append(out, p)
	}
	return out, rows.Err()
}

// CityBetCounts cuenta las apuestas reales por ciudad del día.
func (s *SQLiteLedger) CityBetCounts(ctx context.Context, date time.Time) (map[domain.City]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT city, COUNT(*) FROM trades
		WHERE target_date = ? AND dry_run = 0
		GROUP BY city`, domain.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("storage.CityBetCounts: query: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.City]int)
	for rows.Next() {
		var city string
		var n int
		if err := rows.Scan(&city, &n); err != nil {
			return nil, fmt.Errorf("storage.CityBetCounts: scan row: %w", err)
		}
		out[domain.City(city)] = n
	}
	return out, rows.Err()
}

// PendingTrades devuelve los trades reales y llenados aún pendientes del día.
func (s *SQLiteLedger) PendingTrades(ctx context.Context, date time.Time) ([]domain.ExecutedTrade, error) {
	trades, err := s.queryTrades(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE target_date = ? AND settlement_result = 'pending' AND filled = 1 AND dry_run = 0
		ORDER BY id`, domain.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("storage.PendingTrades: %w", err)
	}
	return trades, nil
}

// UpdateSettlement escribe el resultado terminal. El payout se calcula por
// fila (100 × contracts en win).
func (s *SQLiteLedger) UpdateSettlement(ctx context.Context, u ports.SettlementUpdate) (int64, error) {
	if u.Result != domain.ResultWin && u.Result != domain.ResultLoss {
		return 0, fmt.Errorf("storage.UpdateSettlement: %s: result %q is not terminal", u.Ticker, u.Result)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET
			settlement_result = ?,
			payout_cents      = CASE WHEN ? = 'win' THEN 100 * contracts ELSE 0 END,
			observed_high_f   = ?,
			observed_low_f    = ?
		WHERE ticker = ? AND target_date = ? AND side = ?
		  AND settlement_result = 'pending' AND filled = 1 AND dry_run = 0`,
		string(u.Result), string(u.Result),
		nullFloat(u.ObservedHigh), nullFloat(u.ObservedLow),
		u.Ticker, domain.FormatDate(u.TargetDate), string(u.Side),
	)
	if err != nil {
		return 0, fmt.Errorf("storage.UpdateSettlement: %s: %w", u.Ticker, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage.UpdateSettlement: rows affected: %w", err)
	}
	return n, nil
}

// SettledTrades devuelve todos los trades reales ya liquidados.
func (s *SQLiteLedger) SettledTrades(ctx context.Context) ([]domain.ExecutedTrade, error) {
	trades, err := s.queryTrades(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE settlement_result IN ('win', 'loss') AND filled = 1 AND dry_run = 0
		ORDER BY target_date, id`)
	if err != nil {
		return nil, fmt.Errorf("storage.SettledTrades: %w", err)
	}
	return trades, nil
}

// History devuelve los últimos trades, más recientes primero.
func (s *SQLiteLedger) History(ctx context.Context, limit int) ([]domain.ExecutedTrade, error) {
	if limit <= 0 {
		limit = 50
	}
	trades, err := s.queryTrades(ctx, `
		SELECT `+tradeColumns+` FROM trades
		ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.History: %w", err)
	}
	return trades, nil
}

// PnLSummary agrega los trades reales llenados.
func (s *SQLiteLedger) PnLSummary(ctx context.Context) (domain.PnL, error) {
	var p domain.PnL
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN settlement_result IN ('win','loss') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN settlement_result = 'win'  THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN settlement_result = 'loss' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN settlement_result = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN settlement_result IN ('win','loss') THEN cost_cents ELSE 0 END), 0),
			COALESCE(SUM(payout_cents), 0)
		FROM trades WHERE filled = 1 AND dry_run = 0`,
	).Scan(&p.Settled, &p.Wins, &p.Losses, &p.Pending, &p.CostCents, &p.PayoutCents)
	if err != nil {
		return domain.PnL{}, fmt.Errorf("storage.PnLSummary: %w", err)
	}
	return p, nil
}

func (s *SQLiteLedger) queryTrades(ctx context.Context, query string, args ...any) ([]domain.ExecutedTrade, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []domain.ExecutedTrade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrade(rows *sql.Rows) (domain.ExecutedTrade, error) {
	var (
		t                                  domain.ExecutedTrade
		ts, mode, date, city, side, result string
		title, orderID, source             sql.NullString
		fHigh, fLow, prob, ev              sql.NullFloat64
		oHigh, oLow                        sql.NullFloat64
		mHigh, mLow, sdHigh, sdLow         sql.NullFloat64
		members                            sql.NullInt64
		filled, dry                        int
	)
	err := rows.Scan(
		&t.ID, &ts, &mode, &date, &city, &t.Ticker, &title, &side,
		&t.YesPrice, &t.CostCents, &t.Count, &t.Potential,
		&fHigh, &fLow, &prob, &ev,
		&filled, &orderID, &dry, &result, &t.PayoutCents,
		&oHigh, &oLow, &source, &members,
		&mHigh, &mLow, &sdHigh, &sdLow,
	)
	if err != nil {
		return domain.ExecutedTrade{}, err
	}

	t.Timestamp, _ = time.Parse(time.RFC3339, ts)
	t.TargetDate, _ = domain.ParseDate(date)
	t.Mode = domain.Mode(mode)
	t.City = domain.City(city)
	if t.Side, err = domain.ParseSide(side); err != nil {
		return domain.ExecutedTrade{}, fmt.Errorf("trade %d: %w", t.ID, err)
	}
	t.Result = domain.SettlementResult(result)
	t.Title = title.String
	t.OrderID = orderID.String
	t.Source = domain.ProbSource(source.String)
	t.Filled = filled == 1
	t.DryRun = dry == 1
	t.ForecastHigh, t.ForecastLow = floatPtr(fHigh), floatPtr(fLow)
	t.ObservedHigh, t.ObservedLow = floatPtr(oHigh), floatPtr(oLow)
	t.EstProb = prob.Float64
	t.EVCents = ev.Float64
	t.Ensemble = domain.EnsembleStats{
		Members:  int(members.Int64),
		MeanHigh: floatPtr(mHigh),
		MeanLow:  floatPtr(mLow),
		SDHigh:   floatPtr(sdHigh),
		SDLow:    floatPtr(sdLow),
	}
	return t, nil
}
