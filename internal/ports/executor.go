package ports

import (
	"context"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// OrderExecutor envía órdenes al exchange.
type OrderExecutor interface {
	// PlaceOrder envía una compra limit. Con req.DryRun no sale ningún request
	// y el resultado queda marcado como dry-run.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)

	// GetBalance devuelve el saldo disponible en centavos.
	GetBalance(ctx context.Context) (int, error)
}
