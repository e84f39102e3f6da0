package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// MarketProvider lista los contratos abiertos de una serie y sus books.
type MarketProvider interface {
	BookProvider

	// FetchMarkets devuelve los mercados abiertos de la serie cuyo evento
	// liquida en date.
	FetchMarkets(ctx context.Context, series string, date time.Time) ([]domain.Market, error)
}
