package ports

import (
	"context"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// BookProvider obtiene el orderbook de un contrato.
type BookProvider interface {
	// FetchOrderBook devuelve los bids YES y NO en centavos, ascendentes.
	// Un lado vacío significa que no hay interés; no es un error.
	FetchOrderBook(ctx context.Context, ticker string) (domain.OrderBook, error)
}
