package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/wxtrader/config"
	"github.com/alejandrodnm/wxtrader/internal/application/risk"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDry, cfg.Mode())
	assert.Len(t, cfg.Cities(), 7)
	assert.Equal(t, risk.DefaultLimits(), cfg.Limits())
	assert.Equal(t, 5.0, cfg.Trading.MinEdgeCents)
	assert.Equal(t, "America/Chicago", cfg.Location().String())
	assert.Equal(t, "wxtrader.db", cfg.Storage.DSN)
	assert.Equal(t, 4, cfg.Trading.Workers)
	assert.Equal(t, 4.0, cfg.SDTable().Lookup(domain.Chicago, domain.Winter))
}

func TestLoad_YAMLAndSDOverrides(t *testing.T) {
	path := writeConfig(t, `
trading:
  cities: [chi, nyc]
  max_bet_dollars: 2.50
  max_run_dollars: 10
  max_bets_per_city: 3
kalshi:
  mode: demo
forecast_sd:
  CHI:
    winter: 4.6
  default:
    summer: 2.4
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDemo, cfg.Mode())
	assert.Equal(t, []domain.City{domain.Chicago, domain.NewYork}, cfg.Cities())

	l := cfg.Limits()
	assert.Equal(t, 250, l.MaxBetCents)
	assert.Equal(t, 1000, l.MaxRunCents)
	assert.Equal(t, 3, l.MaxBetsPerCity)
	assert.Equal(t, 15, l.MinPriceCents)

	sd := cfg.SDTable()
	assert.Equal(t, 4.6, sd.Lookup(domain.Chicago, domain.Winter))
	assert.Equal(t, 3.2, sd.Lookup(domain.Chicago, domain.Spring))
	assert.Equal(t, 2.4, sd.Default()[domain.Summer])
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitZeroKept(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "trading:\n  min_edge_cents: 0\n  cities: [MIA]\n"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Trading.MinEdgeCents)
	assert.Equal(t, []domain.City{domain.Miami}, cfg.Cities())
	// El resto de la sección conserva sus defaults.
	assert.Equal(t, 15, cfg.Trading.MinPriceCents)
	assert.Equal(t, 500, cfg.Limits().MaxBetCents)
	assert.Equal(t, 400, cfg.Limits().MaxRunCents)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KALSHI_MODE", "live")
	t.Setenv("WXTRADER_DSN", ":memory:")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load(writeConfig(t, "kalshi:\n  mode: demo\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeLive, cfg.Mode())
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"mode":         "kalshi:\n  mode: yolo\n",
		"city":         "trading:\n  cities: [XYZ]\n",
		"price band":   "trading:\n  min_price_cents: 60\n  max_price_cents: 40\n",
		"sd season":    "forecast_sd:\n  CHI:\n    monsoon: 2\n",
		"sd value":     "forecast_sd:\n  NYC:\n    winter: -1\n",
		"sd city":      "forecast_sd:\n  ATL:\n    winter: 3\n",
		"timezone":     "trading:\n  timezone: Mars/Olympus\n",
		"log level":    "log:\n  level: loud\n",
		"bad yaml":     "trading: [\n",
		"negative bet": "trading:\n  max_bet_dollars: -1\n",
		"workers":      "trading:\n  workers: 99\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Example(t *testing.T) {
	cfg, err := config.Load("config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDry, cfg.Mode())
	assert.Equal(t, risk.DefaultLimits(), cfg.Limits())
	assert.Equal(t, domain.DefaultSDTable(), cfg.SDTable())
	assert.Equal(t, 4, cfg.Trading.Workers)
}
