package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/adapters/kalshi"
	"github.com/alejandrodnm/wxtrader/internal/adapters/notify"
	"github.com/alejandrodnm/wxtrader/internal/adapters/weather"
	"github.com/alejandrodnm/wxtrader/internal/application/trader"
	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/ports"
)

func runTrade(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("trade", flag.ExitOnError)
	dateFlag := fs.String("date", "", "target date YYYY-MM-DD (default: tomorrow)")
	modeFlag := fs.String("mode", "", "live|demo|dry (overrides config)")
	citiesFlag := fs.String("cities", "", "comma-separated city codes (overrides config)")
	if err := a.setup(fs, args); err != nil {
		return err
	}
	cfg := a.cfg

	mode := cfg.Mode()
	if *modeFlag != "" {
		m, err := domain.ParseMode(*modeFlag)
		if err != nil {
			return err
		}
		mode = m
	}

	cities := cfg.Cities()
	if *citiesFlag != "" {
		cities = nil
		for _, s := range strings.Split(*citiesFlag, ",") {
			c, err := domain.ParseCity(s)
			if err != nil {
				return err
			}
			cities = append(cities, c)
		}
	}

	date, err := a.resolveDate(*dateFlag, 1)
	if err != nil {
		return err
	}

	client, err := newKalshiClient(a, mode)
	if err != nil {
		return err
	}

	slog.Info("wxtrader trade starting",
		"mode", mode, "date", domain.FormatDate(date), "cities", cities,
		"base_url", kalshiBaseURL(a, mode), "ensemble", !cfg.Weather.DisableEnsemble)

	t := trader.New(
		newForecastProvider(a),
		client,
		client,
		a.ledger,
		newNotifier(a),
		a.metrics,
		trader.Config{
			Mode:         mode,
			Cities:       cities,
			MinEdgeCents: cfg.Trading.MinEdgeCents,
			Limits:       cfg.Limits(),
			SD:           cfg.SDTable(),
			Workers:      cfg.Trading.Workers,
		},
	)
	if _, err := t.Run(ctx, date); err != nil {
		return err
	}
	return nil
}

func kalshiBaseURL(a *app, mode domain.Mode) string {
	if a.cfg.Kalshi.BaseURL != "" {
		return a.cfg.Kalshi.BaseURL
	}
	return kalshi.BaseURLFor(mode)
}

// newKalshiClient carga las credenciales si están. Live y demo las
// necesitan; el dry run sólo lee datos públicos de mercado.
func newKalshiClient(a *app, mode domain.Mode) (*kalshi.Client, error) {
	var creds *kalshi.Credentials
	kc := a.cfg.Kalshi
	if kc.KeyID != "" || kc.PrivateKeyPath != "" {
		c, err := kalshi.LoadCredentials(kc.KeyID, kc.PrivateKeyPath)
		if err != nil {
			if mode != domain.ModeDry {
				return nil, err
			}
			slog.Warn("kalshi credentials not loaded, dry run continues unsigned", "err", err)
		} else {
			creds = c
		}
	}
	if creds == nil && mode != domain.ModeDry {
		return nil, fmt.Errorf("%s mode: %w", mode, kalshi.ErrNoCredentials)
	}
	return kalshi.NewClient(kalshiBaseURL(a, mode), creds), nil
}

func newForecastProvider(a *app) *weather.Provider {
	wc := a.cfg.Weather
	nws := weather.NewNWS(wc.NWSBaseURL, wc.UserAgent)
	if wc.DisableEnsemble {
		return weather.NewProvider(nws, nil)
	}
	return weather.NewProvider(nws, weather.NewEnsemble(wc.EnsembleBaseURL, wc.EnsembleModels))
}

func newNotifier(a *app) ports.Notifier {
	sinks := []ports.Notifier{notify.NewConsole()}
	if url := a.cfg.Notify.DiscordWebhookURL; url != "" {
		sinks = append(sinks, notify.NewDiscord(url, a.cfg.Location(), httpclient.WithRetries(1, 0)))
	}
	return notify.NewMulti(sinks...)
}
