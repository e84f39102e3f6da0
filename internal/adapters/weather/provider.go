package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// PointSource da los extremos del pronóstico puntual.
type PointSource interface {
	PointForecast(ctx context.Context, city domain.City, date time.Time) (high, low float64, err error)
}

// MemberSource da los extremos de cada miembro del ensemble.
type MemberSource interface {
	Members(ctx context.Context, city domain.City, date time.Time) (highs, lows []float64, err error)
}

// Provider combina el pronóstico puntual de NWS con un ensemble opcional.
// Sólo falla si ninguna de las dos fuentes dio algo.
type Provider struct {
	point    PointSource
	ensemble MemberSource // nil desactiva el ensemble
}

// NewProvider crea un ForecastProvider. ensemble puede ser nil.
func NewProvider(point PointSource, ensemble MemberSource) *Provider {
	return &Provider{point: point, ensemble: ensemble}
}

// FetchForecast implementa ports.ForecastProvider.
func (p *Provider) FetchForecast(ctx context.Context, city domain.City, date time.Time) (domain.Forecast, error) {
	f := domain.Forecast{City: city}

	high, low, pointErr := p.point.PointForecast(ctx, city, date)
	if pointErr == nil {
		f.HighF, f.LowF = &high, &low
	} else {
		slog.Warn("weather: point forecast unavailable", "city", city, "err", pointErr)
	}

	var ensErr error
	if p.ensemble != nil {
		f.EnsembleHigh, f.EnsembleLow, ensErr = p.ensemble.Members(ctx, city, date)
		if ensErr != nil {
			slog.Warn("weather: ensemble unavailable", "city", city, "err", ensErr)
		}
	}

	if f.HighF == nil && len(f.EnsembleHigh) == 0 && len(f.EnsembleLow) == 0 {
		return domain.Forecast{}, fmt.Errorf("weather.FetchForecast: %s: %w", city, errors.Join(pointErr, ensErr))
	}
	return f, nil
}
