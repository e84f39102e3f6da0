package main

import (
	"context"
	"flag"

	"github.com/alejandrodnm/wxtrader/internal/adapters/notify"
)

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of recent trades to show")
	if err := a.setup(fs, args); err != nil {
		return err
	}

	trades, err := a.ledger.History(ctx, *limit)
	if err != nil {
		return err
	}
	pnl, err := a.ledger.PnLSummary(ctx)
	if err != nil {
		return err
	}
	notify.NewConsole().PrintHistory(trades, pnl)
	return nil
}
