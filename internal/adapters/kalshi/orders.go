package kalshi

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/alejandrodnm/wxtrader/internal/domain"
)

// ErrNoCredentials: llamada autenticada sobre un cliente de sólo lectura.
var ErrNoCredentials = errors.New("kalshi: credentials required")

// PlaceOrder envía una compra limit a req.YesPrice. Con req.DryRun no se
// envía nada y el resultado lleva el client order id que se habría usado.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if req.YesPrice < 1 || req.YesPrice > 99 {
		return domain.OrderResult{}, fmt.Errorf("kalshi.PlaceOrder: price %dc out of range 1-99", req.YesPrice)
	}
	if req.Count < 1 {
		return domain.OrderResult{}, fmt.Errorf("kalshi.PlaceOrder: count %d must be >= 1", req.Count)
	}

	body := createOrderRequest{
		Ticker:        req.Ticker,
		ClientOrderID: uuid.NewString(),
		Action:        "buy",
		Side:          string(req.Side),
		Count:         req.Count,
		Type:          "limit",
		YesPrice:      req.YesPrice,
	}

	if req.DryRun {
		c.log.Info("kalshi: dry run, order not sent",
			"ticker", req.Ticker, "side", req.Side, "yes_price", req.YesPrice, "count", req.Count)
		return domain.OrderResult{OrderID: body.ClientOrderID, Status: "dry_run", DryRun: true}, nil
	}
	if c.creds == nil {
		return domain.OrderResult{}, fmt.Errorf("kalshi.PlaceOrder: %w", ErrNoCredentials)
	}

	var resp createOrderResponse
	if err := c.http.Post(ctx, apiPrefix+"/portfolio/orders", body, &resp); err != nil {
		// Un retry tras un timeout puede volver como "duplicado" aunque el
		// primer intento entró. El client_order_id dice si la orden existe.
		if o, ok := c.findOrder(ctx, req.Ticker, body.ClientOrderID); ok {
			c.log.Warn("kalshi: order landed despite error",
				"ticker", req.Ticker, "client_order_id", body.ClientOrderID, "order_id", o.OrderID, "err", err)
			return toOrderResult(o), nil
		}
		return domain.OrderResult{}, fmt.Errorf("kalshi.PlaceOrder: %s: %w", req.Ticker, err)
	}
	return toOrderResult(resp.Order), nil
}

// findOrder busca entre las órdenes del ticker la que lleva clientOrderID.
func (c *Client) findOrder(ctx context.Context, ticker, clientOrderID string) (apiOrder, bool) {
	q := url.Values{}
	q.Set("ticker", ticker)
	var resp ordersResponse
	if err := c.http.Get(ctx, apiPrefix+"/portfolio/orders", q, &resp); err != nil {
		c.log.Warn("kalshi: order lookup failed", "ticker", ticker, "err", err)
		return apiOrder{}, false
	}
	for _, o := range resp.Orders {
		if o.ClientOrderID == clientOrderID {
			return o, true
		}
	}
	return apiOrder{}, false
}

func toOrderResult(o apiOrder) domain.OrderResult {
	return domain.OrderResult{
		OrderID:   o.OrderID,
		Status:    o.Status,
		FillCount: o.FillCount,
		Filled:    o.FillCount > 0,
	}
}

// GetBalance devuelve el saldo disponible en centavos.
func (c *Client) GetBalance(ctx context.Context) (int, error) {
	if c.creds == nil {
		return 0, fmt.Errorf("kalshi.GetBalance: %w", ErrNoCredentials)
	}
	var resp balanceResponse
	if err := c.http.Get(ctx, apiPrefix+"/portfolio/balance", nil, &resp); err != nil {
		return 0, fmt.Errorf("kalshi.GetBalance: %w", err)
	}
	return resp.Balance, nil
}
