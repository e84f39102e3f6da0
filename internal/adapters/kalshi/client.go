// Package kalshi implementa MarketProvider y OrderExecutor sobre la
// trade API v2 de Kalshi.
package kalshi

import (
	"log/slog"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/domain"
)

const (
	ProdBaseURL = "https://api.elections.kalshi.com"
	DemoBaseURL = "https://demo-api.kalshi.co"

	apiPrefix = "/trade-api/v2"

	// Basic tier: 20 reads/s. Nos quedamos en la mitad.
	ratePerSec = 10
)

// BaseURLFor devuelve el host de la API según el modo. El dry run lee
// datos de mercado de producción.
func BaseURLFor(mode domain.Mode) string {
	if mode == domain.ModeDemo {
		return DemoBaseURL
	}
	return ProdBaseURL
}

// Client es el cliente de Kalshi. Sin credenciales solo puede leer datos
// públicos de mercado.
type Client struct {
	http  *httpclient.Client
	creds *Credentials
	log   *slog.Logger
}

// NewClient crea un cliente para baseURL. creds puede ser nil para sólo lectura.
func NewClient(baseURL string, creds *Credentials, opts ...httpclient.Option) *Client {
	all := []httpclient.Option{httpclient.WithRateLimit(ratePerSec, 5)}
	if creds != nil {
		all = append(all, httpclient.WithSigner(creds))
	}
	all = append(all, opts...)
	return &Client{
		http:  httpclient.New(baseURL, all...),
		creds: creds,
		log:   slog.Default(),
	}
}
