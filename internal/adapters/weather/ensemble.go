package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

const (
	EnsembleBaseURL = "https://ensemble-api.open-meteo.com"
	defaultModels   = "gfs025"

	dailyMax = "temperature_2m_max"
	dailyMin = "temperature_2m_min"
)

// Ensemble es el cliente de la API de ensembles de Open-Meteo.
type Ensemble struct {
	http   *httpclient.Client
	models string
}

// NewEnsemble crea un cliente. models es la lista de modelos de Open-Meteo.
func NewEnsemble(baseURL, models string, opts ...httpclient.Option) *Ensemble {
	if baseURL == "" {
		baseURL = EnsembleBaseURL
	}
	if models == "" {
		models = defaultModels
	}
	all := append([]httpclient.Option{httpclient.WithRateLimit(5, 2)}, opts...)
	return &Ensemble{http: httpclient.New(baseURL, all...), models: models}
}

// Members devuelve la máxima y mínima diaria de cada miembro para date (°F).
func (e *Ensemble) Members(ctx context.Context, city domain.City, date time.Time) (highs, lows []float64, err error) {
	ci, _, err := cityInfo(city)
	if err != nil {
		return nil, nil, fmt.Errorf("weather.Members: %w", err)
	}
	day := domain.FormatDate(date)
	q := url.Values{
		"latitude":         {fmt.Sprintf("%.4f", ci.Lat)},
		"longitude":        {fmt.Sprintf("%.4f", ci.Lon)},
		"daily":            {dailyMax + "," + dailyMin},
		"models":           {e.models},
		"temperature_unit": {"fahrenheit"},
		"timezone":         {ci.Timezone},
		"start_date":       {day},
		"end_date":         {day},
	}

	var resp ensembleResponse
	if err := e.http.Get(ctx, "/v1/ensemble", q, &resp); err != nil {
		return nil, nil, fmt.Errorf("weather.Members: %s: %w", city, err)
	}

	idx := -1
	for i, d := range resp.Daily.Time {
		if d == day {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("weather.Members: %s %s: %w", city, day, ErrNoData)
	}

	// Claves: temperature_2m_max (control) y temperature_2m_max_memberNN.
	for key, raw := range resp.Daily.Series {
		var vals []*float64
		if err := json.Unmarshal(raw, &vals); err != nil || idx >= len(vals) || vals[idx] == nil {
			continue
		}
		switch {
		case strings.HasPrefix(key, dailyMax):
			highs = append(highs, *vals[idx])
		case strings.HasPrefix(key, dailyMin):
			lows = append(lows, *vals[idx])
		}
	}
	return highs, lows, nil
}
