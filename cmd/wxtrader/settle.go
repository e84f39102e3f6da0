package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/alejandrodnm/wxtrader/internal/adapters/weather"
	"github.com/alejandrodnm/wxtrader/internal/application/settlement"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

func runSettle(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("settle", flag.ExitOnError)
	dateFlag := fs.String("date", "", "date to settle YYYY-MM-DD (default: yesterday)")
	if err := a.setup(fs, args); err != nil {
		return err
	}

	date, err := a.resolveDate(*dateFlag, -1)
	if err != nil {
		return err
	}

	wc := a.cfg.Weather
	s := settlement.New(
		a.ledger,
		weather.NewNWS(wc.NWSBaseURL, wc.UserAgent),
		a.cfg.Location(),
		settlement.WithMetrics(a.metrics),
		settlement.WithNotifier(newNotifier(a)),
	)

	slog.Info("wxtrader settle starting", "date", domain.FormatDate(date))
	report, err := s.Settle(ctx, date)
	if err != nil {
		return err
	}
	if len(report.Settled) == 0 {
		slog.Info("settle: nothing settled",
			"date", domain.FormatDate(date),
			"unparseable", len(report.Unparseable),
			"missing_obs", len(report.MissingObs))
	}
	return nil
}
