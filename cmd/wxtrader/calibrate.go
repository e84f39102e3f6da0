package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/alejandrodnm/wxtrader/internal/adapters/notify"
	"github.com/alejandrodnm/wxtrader/internal/application/calibration"
)

func runCalibrate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("calibrate", flag.ExitOnError)
	if err := a.setup(fs, args); err != nil {
		return err
	}

	trades, err := a.ledger.SettledTrades(ctx)
	if err != nil {
		return err
	}
	report := calibration.Analyze(trades, a.cfg.SDTable())
	slog.Debug("calibrate: analyzed",
		"trades", report.Trades, "error_samples", report.ErrorSamples,
		"suggestions", len(report.Suggestions))

	notify.NewConsole().PrintCalibration(report)
	return nil
}
