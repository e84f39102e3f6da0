// Package weather implementa ForecastProvider y ObservationProvider sobre
// la API del NWS y la API de ensembles de Open-Meteo.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

const (
	NWSBaseURL       = "https://api.weather.gov"
	defaultUserAgent = "wxtrader/1.0"
)

// ErrNoData: la fuente respondió pero no tiene nada para ese día.
var ErrNoData = errors.New("weather: no data for date")

// NWS es el cliente de api.weather.gov. Cachea la resolución /points.
type NWS struct {
	http *httpclient.Client

	mu     sync.Mutex
	hourly map[domain.City]string // ciudad → path de forecastHourly
}

// NewNWS crea un cliente. NWS rechaza requests sin User-Agent.
func NewNWS(baseURL, userAgent string, opts ...httpclient.Option) *NWS {
	if baseURL == "" {
		baseURL = NWSBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	all := append([]httpclient.Option{
		httpclient.WithHeader("User-Agent", userAgent),
		httpclient.WithRateLimit(5, 2),
	}, opts...)
	return &NWS{
		http:   httpclient.New(baseURL, all...),
		hourly: make(map[domain.City]string),
	}
}

func cityInfo(c domain.City) (domain.CityInfo, *time.Location, error) {
	ci, ok := domain.LookupCity(c)
	if !ok {
		return domain.CityInfo{}, nil, fmt.Errorf("unknown city %q", c)
	}
	loc, err := time.LoadLocation(ci.Timezone)
	if err != nil {
		return domain.CityInfo{}, nil, fmt.Errorf("load timezone %s: %w", ci.Timezone, err)
	}
	return ci, loc, nil
}

// requestPath reduce un link absoluto de NWS a path+query.
func requestPath(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", link, err)
	}
	return u.RequestURI(), nil
}

func (n *NWS) forecastHourlyPath(ctx context.Context, ci domain.CityInfo) (string, error) {
	n.mu.Lock()
	p, ok := n.hourly[ci.City]
	n.mu.Unlock()
	if ok {
		return p, nil
	}

	var resp pointsResponse
	path := fmt.Sprintf("/points/%.4f,%.4f", ci.Lat, ci.Lon)
	if err := n.http.Get(ctx, path, nil, &resp); err != nil {
		return "", fmt.Errorf("resolve gridpoint: %w", err)
	}
	if resp.Properties.ForecastHourly == "" {
		return "", fmt.Errorf("resolve gridpoint: empty forecastHourly for %s", ci.City)
	}
	p, err := requestPath(resp.Properties.ForecastHourly)
	if err != nil {
		return "", err
	}

	n.mu.Lock()
	n.hourly[ci.City] = p
	n.mu.Unlock()
	return p, nil
}

// PointForecast devuelve máxima y mínima pronosticadas: el máximo y el
// mínimo de las temperaturas horarias de date en hora local de la ciudad.
func (n *NWS) PointForecast(ctx context.Context, city domain.City, date time.Time) (high, low float64, err error) {
	ci, loc, err := cityInfo(city)
	if err != nil {
		return 0, 0, fmt.Errorf("weather.PointForecast: %w", err)
	}
	path, err := n.forecastHourlyPath(ctx, ci)
	if err != nil {
		return 0, 0, fmt.Errorf("weather.PointForecast: %s: %w", city, err)
	}

	var resp hourlyResponse
	if err := n.http.Get(ctx, path, nil, &resp); err != nil {
		return 0, 0, fmt.Errorf("weather.PointForecast: %s: hourly: %w", city, err)
	}

	var temps []float64
	for _, p := range resp.Properties.Periods {
		start, err := time.Parse(time.RFC3339, p.StartTime)
		if err != nil {
			continue
		}
		if !domain.DateIn(start, loc).Equal(date) {
			continue
		}
		f := p.Temperature
		if strings.EqualFold(p.TemperatureUnit, "C") {
			f = celsiusToF(f)
		}
		temps = append(temps, f)
	}
	if len(temps) == 0 {
		return 0, 0, fmt.Errorf("weather.PointForecast: %s %s: %w", city, domain.FormatDate(date), ErrNoData)
	}
	high, low = extremes(temps)
	return high, low, nil
}

// FetchObservation devuelve los extremos observados a precisión completa
// en la estación de liquidación durante el día local.
func (n *NWS) FetchObservation(ctx context.Context, city domain.City, date time.Time) (domain.Observation, error) {
	ci, loc, err := cityInfo(city)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("weather.FetchObservation: %w", err)
	}

	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, 0, loc)
	q := url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}

	var resp observationsResponse
	if err := n.http.Get(ctx, "/stations/"+ci.Station+"/observations", q, &resp); err != nil {
		return domain.Observation{}, fmt.Errorf("weather.FetchObservation: %s: %w", city, err)
	}

	var temps []float64
	for _, f := range resp.Features {
		v := f.Properties.Temperature.Value
		if v == nil {
			continue
		}
		if strings.HasSuffix(f.Properties.Temperature.UnitCode, "degF") {
			temps = append(temps, *v)
		} else {
			temps = append(temps, celsiusToF(*v))
		}
	}
	if len(temps) == 0 {
		return domain.Observation{}, fmt.Errorf("weather.FetchObservation: %s %s: %w", city, domain.FormatDate(date), ErrNoData)
	}

	high, low := extremes(temps)
	return domain.Observation{City: city, HighF: &high, LowF: &low}, nil
}

func celsiusToF(c float64) float64 { return c*9/5 + 32 }

func extremes(xs []float64) (hi, lo float64) {
	hi, lo = xs[0], xs[0]
	for _, x := range xs[1:] {
		hi = max(hi, x)
		lo = min(lo, x)
	}
	return hi, lo
}
