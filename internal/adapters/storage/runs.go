package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// LogRun inserta el resumen de un batch.
func (s *SQLiteLedger) LogRun(ctx context.Context, r domain.RunSummary) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	cities := make([]string, len(r.Cities))
	for i, c := range r.Cities {
		cities[i] = string(c)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
			(timestamp, mode, target_date, cities, trades_placed, trades_skipped,
			 total_cost_cents, balance_before_cents, balance_after_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), string(r.Mode), domain.FormatDate(r.TargetDate),
		strings.Join(cities, ","), r.TradesPlaced, r.TradesSkipped, r.TotalCost,
		nullInt(r.BalanceBefore), nullInt(r.BalanceAfter),
	); err != nil {
		return fmt.Errorf("storage.LogRun: insert: %w", err)
	}
	return nil
}

// Runs devuelve los últimos runs, más recientes primero.
func (s *SQLiteLedger) Runs(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, mode, target_date, cities, trades_placed, trades_skipped,
		       total_cost_cents, balance_before_cents, balance_after_cents
		FROM runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.Runs: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		var ts, mode, date, cities string
		var before, after sql.NullInt64
		if err := rows.Scan(&ts, &mode, &date, &cities, &r.TradesPlaced, &r.TradesSkipped,
			&r.TotalCost, &before, &after); err != nil {
			return nil, fmt.Errorf("storage.Runs: scan row: %w", err)
		}
		r.Timestamp, _ = time.Parse(time.RFC3339, ts)
		r.TargetDate, _ = domain.ParseDate(date)
		r.Mode = domain.Mode(mode)
		for _, c := range strings.Split(cities, ",") {
			if c != "" {
				r.Cities = append(r.Cities, domain.City(c))
			}
		}
		r.BalanceBefore, r.BalanceAfter = intPtr(before), intPtr(after)
		out = append(out, r)
	}
	return out, rows.Err()
}
