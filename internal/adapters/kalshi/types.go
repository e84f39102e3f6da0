package kalshi

// Tipos wire de la trade API v2 de Kalshi. Sólo los campos que se leen.

type eventsResponse struct {
	Events []apiEvent `json:"events"`
	Cursor string     `json:"cursor"`
}

type apiEvent struct {
	EventTicker  string      `json:"event_ticker"`
	SeriesTicker string      `json:"series_ticker"`
	Title        string      `json:"title"`
	Markets      []apiMarket `json:"markets"`
}

type apiMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	YesSubTitle string `json:"yes_sub_title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
}

// Los niveles de orderbookResponse son pares [price_cents, count], ascendentes.
type orderbookResponse struct {
	Orderbook struct {
		Yes [][2]int `json:"yes"`
		No  [][2]int `json:"no"`
	} `json:"orderbook"`
}

type createOrderRequest struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Action        string `json:"action"`
	Side          string `json:"side"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	YesPrice      int    `json:"yes_price"`
}

type apiOrder struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	Status        string `json:"status"`
	FillCount     int    `json:"fill_count"`
}

type createOrderResponse struct {
	Order apiOrder `json:"order"`
}

type ordersResponse struct {
	Orders []apiOrder `json:"orders"`
	Cursor string     `json:"cursor"`
}

type balanceResponse struct {
	Balance        int `json:"balance"`
	PortfolioValue int `json:"portfolio_value"`
}
