package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/adapters/weather"
	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feb12 = time.Date(2026, time.February, 12, 0, 0, 0, 0, time.UTC)

func fast() httpclient.Option { return httpclient.WithRetries(1, time.Millisecond) }

func nwsServer(t *testing.T, pointsCalls *int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		switch {
		case strings.HasPrefix(r.URL.Path, "/points/"):
			*pointsCalls++
			w.Write([]byte(`{"properties":{"forecastHourly":"` + srv.URL + `/gridpoints/LOT/70,70/forecast/hourly"}}`))
		case r.URL.Path == "/gridpoints/LOT/70,70/forecast/hourly":
			// Chicago está en UTC-6 en febrero: el período de las 05:00Z sigue siendo el 11 en hora local.
			w.Write([]byte(`{"properties":{"periods":[
				{"startTime":"2026-02-12T05:00:00+00:00","temperature":50,"temperatureUnit":"F"},
				{"startTime":"2026-02-12T00:00:00-06:00","temperature":30,"temperatureUnit":"F"},
				{"startTime":"2026-02-12T14:00:00-06:00","temperature":41,"temperatureUnit":"F"},
				{"startTime":"2026-02-12T23:00:00-06:00","temperature":33,"temperatureUnit":"F"},
				{"startTime":"2026-02-13T00:00:00-06:00","temperature":10,"temperatureUnit":"F"}
			]}}`))
		case r.URL.Path == "/stations/KMDW/observations":
			assert.Equal(t, "2026-02-12T00:00:00-06:00", r.URL.Query().Get("start"))
			assert.Equal(t, "2026-02-12T23:59:59-06:00", r.URL.Query().Get("end"))
			w.Write([]byte(`{"features":[
				{"properties":{"temperature":{"value":-1.0,"unitCode":"wmoUnit:degC"}}},
				{"properties":{"temperature":{"value":null,"unitCode":"wmoUnit:degC"}}},
				{"properties":{"temperature":{"value":3.5,"unitCode":"wmoUnit:degC"}}}
			]}`))
		case r.URL.Path == "/stations/KNYC/observations":
			w.Write([]byte(`{"features":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	return srv
}

func TestNWS_PointForecastUsesLocalDay(t *testing.T) {
	calls := 0
	srv := nwsServer(t, &calls)
	defer srv.Close()

	n := weather.NewNWS(srv.URL, "test-agent", fast())
	hi, lo, err := n.PointForecast(context.Background(), domain.Chicago, feb12)
	require.NoError(t, err)
	assert.Equal(t, 41.0, hi)
	assert.Equal(t, 30.0, lo)

	_, _, err = n.PointForecast(context.Background(), domain.Chicago, feb12)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "gridpoint resolution is cached")
}

func TestNWS_FetchObservation(t *testing.T) {
	calls := 0
	srv := nwsServer(t, &calls)
	defer srv.Close()

	n := weather.NewNWS(srv.URL, "test-agent", fast())
	obs, err := n.FetchObservation(context.Background(), domain.Chicago, feb12)
	require.NoError(t, err)
	require.NotNil(t, obs.HighF)
	assert.InDelta(t, 38.3, *obs.HighF, 1e-9)
	assert.InDelta(t, 30.2, *obs.LowF, 1e-9)

	_, err = n.FetchObservation(context.Background(), domain.NewYork, feb12)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestEnsemble_Members(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v1/ensemble", r.URL.Path)
		assert.Equal(t, "fahrenheit", q.Get("temperature_unit"))
		assert.Equal(t, "America/Chicago", q.Get("timezone"))
		assert.Equal(t, "2026-02-12", q.Get("start_date"))
		w.Write([]byte(`{"daily":{
			"time":["2026-02-12"],
			"temperature_2m_max":[40.1],
			"temperature_2m_max_member01":[39.0],
			"temperature_2m_max_member02":[null],
			"temperature_2m_min":[28.0],
			"temperature_2m_min_member01":[27.5]
		}}`))
	}))
	defer srv.Close()

	e := weather.NewEnsemble(srv.URL, "", fast())
	highs, lows, err := e.Members(context.Background(), domain.Chicago, feb12)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{40.1, 39.0}, highs)
	assert.ElementsMatch(t, []float64{28.0, 27.5}, lows)
}

type stubPoint struct {
	hi, lo float64
	err    error
}

func (s stubPoint) PointForecast(context.Context, domain.City, time.Time) (float64, float64, error) {
	return s.hi, s.lo, s.err
}

type stubMembers struct {
	highs, lows []float64
	err         error
}

func (s stubMembers) Members(context.Context, domain.City, time.Time) ([]float64, []float64, error) {
	return s.highs, s.lows, s.err
}

func TestProvider_CombinesSources(t *testing.T) {
	p := weather.NewProvider(stubPoint{hi: 41, lo: 30}, stubMembers{highs: []float64{40, 42}})
	f, err := p.FetchForecast(context.Background(), domain.Chicago, feb12)
	require.NoError(t, err)
	assert.Equal(t, 41.0, *f.HighF)
	assert.Len(t, f.EnsembleHigh, 2)
}

func TestProvider_EnsembleFailureIsNotFatal(t *testing.T) {
	p := weather.NewProvider(stubPoint{hi: 41, lo: 30}, stubMembers{err: errors.New("down")})
	f, err := p.FetchForecast(context.Background(), domain.Chicago, feb12)
	require.NoError(t, err)
	assert.Empty(t, f.EnsembleHigh)
}

func TestProvider_BothFail(t *testing.T) {
	p := weather.NewProvider(stubPoint{err: errors.New("nws down")}, nil)
	_, err := p.FetchForecast(context.Background(), domain.Chicago, feb12)
	assert.ErrorContains(t, err, "nws down")
}
