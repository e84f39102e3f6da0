package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// ForecastProvider devuelve el pronóstico puntual y, si hay, los miembros
// del ensemble de una ciudad para un día local.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, city domain.City, date time.Time) (domain.Forecast, error)
}

// ObservationProvider devuelve los extremos observados a precisión completa
// en la estación de liquidación de la ciudad, para un día local ya cerrado.
type ObservationProvider interface {
	FetchObservation(ctx context.Context, city domain.City, date time.Time) (domain.Observation, error)
}
