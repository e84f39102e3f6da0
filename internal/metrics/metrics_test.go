package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/wxtrader/internal/metrics"
)

func TestRecorder_Counts(t *testing.T) {
	r := metrics.New()
	r.BetPlaced("LIVE", "CHI", "yes", 140)
	r.BetPlaced("LIVE", "CHI", "no", 60)
	r.BetRejected("price_band")
	r.BetRejected("price_band")
	r.Settled("win")

	assert.Equal(t, 2, testutil.CollectAndCount(r.Registry(), "wxtrader_bets_placed_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(r.Registry(), "wxtrader_bets_rejected_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(r.Registry(), "wxtrader_trades_settled_total"))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.BetPlaced("LIVE", "CHI", "yes", 1)
		r.BetRejected("duplicate")
		r.RunFinished("trade", time.Now())
		require.NoError(t, r.WriteTextfile("/nonexistent/x.prom"))
	})
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := metrics.New()
	r.CitySkipped("DEN")
	r.RunFinished("trade", time.Now().Add(-2*time.Second))

	path := filepath.Join(t.TempDir(), "wxtrader.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `wxtrader_city_skipped_total{city="DEN"} 1`)
	assert.Contains(t, string(data), "wxtrader_run_duration_seconds_bucket")
}
