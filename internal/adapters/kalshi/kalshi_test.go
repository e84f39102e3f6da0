package kalshi_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/wxtrader/internal/adapters/httpclient"
	"github.com/alejandrodnm/wxtrader/internal/adapters/kalshi"
	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func newClient(srv *httptest.Server, creds *kalshi.Credentials) *kalshi.Client {
	return kalshi.NewClient(srv.URL, creds, httpclient.WithRetries(1, time.Millisecond))
}

// --- auth ---

func TestLoadPrivateKey_PKCS1AndPKCS8(t *testing.T) {
	key := testKey(t)
	dir := t.TempDir()

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkcs8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	for name, data := range map[string][]byte{"pkcs1.pem": pkcs1, "pkcs8.pem": pkcs8} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o600))

		creds, err := kalshi.LoadCredentials("key-1", path)
		require.NoError(t, err, name)
		assert.True(t, key.Equal(creds.PrivateKey), name)
	}

	_, err = kalshi.ParsePrivateKey([]byte("not pem"))
	assert.Error(t, err)
	_, err = kalshi.LoadCredentials("", "x")
	assert.Error(t, err)
}

func TestSign_VerifiesWithPublicKey(t *testing.T) {
	key := testKey(t)
	creds := &kalshi.Credentials{KeyID: "key-1", PrivateKey: key}

	h, err := creds.Sign("GET", "/trade-api/v2/portfolio/balance?foo=bar")
	require.NoError(t, err)
	assert.Equal(t, "key-1", h["KALSHI-ACCESS-KEY"])

	sig, err := base64.StdEncoding.DecodeString(h["KALSHI-ACCESS-SIGNATURE"])
	require.NoError(t, err)
	digest := sha256.Sum256([]byte(h["KALSHI-ACCESS-TIMESTAMP"] + "GET/trade-api/v2/portfolio/balance"))
	assert.NoError(t, rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, digest[:], sig,
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}))
}

// --- markets ---

func TestFetchMarkets_FiltersDateAndPaginates(t *testing.T) {
	pages := []string{
		`{"events":[
			{"event_ticker":"KXHIGHCHI-26FEB11","markets":[{"ticker":"KXHIGHCHI-26FEB11-B30.5","status":"active"}]},
			{"event_ticker":"KXHIGHCHI-26FEB12","markets":[
				{"ticker":"KXHIGHCHI-26FEB12-B38.5","title":"Chicago high","yes_sub_title":"38° to 39°","status":"active"},
				{"ticker":"KXHIGHCHI-26FEB12-T45","yes_sub_title":"45° or above","status":"closed"}
			]}],
		 "cursor":"next"}`,
		`{"events":[{"event_ticker":"KXHIGHCHI-26FEB12","markets":[
			{"ticker":"KXHIGHCHI-26FEB12-T32","yes_sub_title":"31° or below","status":"open"}]}],
		 "cursor":""}`,
	}
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade-api/v2/events", r.URL.Path)
		assert.Equal(t, "KXHIGHCHI", r.URL.Query().Get("series_ticker"))
		assert.Equal(t, "true", r.URL.Query().Get("with_nested_markets"))
		if call == 1 {
			assert.Equal(t, "next", r.URL.Query().Get("cursor"))
		}
		w.Write([]byte(pages[call]))
		call++
	}))
	defer srv.Close()

	date := time.Date(2026, time.February, 12, 0, 0, 0, 0, time.UTC)
	markets, err := newClient(srv, nil).FetchMarkets(context.Background(), "KXHIGHCHI", date)
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "KXHIGHCHI-26FEB12-B38.5", markets[0].Ticker)
	assert.Equal(t, "KXHIGHCHI-26FEB12", markets[0].EventTicker)
	assert.Equal(t, "38° to 39°", markets[0].YesSubTitle)
	assert.Equal(t, "31° or below", markets[1].DisplayTitle())
}

func TestFetchOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade-api/v2/markets/KXHIGHCHI-26FEB12-T38/orderbook", r.URL.Path)
		w.Write([]byte(`{"orderbook":{"yes":[[20,5],[35,10]],"no":null}}`))
	}))
	defer srv.Close()

	ob, err := newClient(srv, nil).FetchOrderBook(context.Background(), "KXHIGHCHI-26FEB12-T38")
	require.NoError(t, err)
	require.Len(t, ob.Yes, 2)
	assert.Equal(t, domain.PriceLevel{Price: 35, Count: 10}, ob.Yes[1])
	assert.Empty(t, ob.No)

	cost, ok := ob.CrossingCost(domain.SideNo)
	require.True(t, ok)
	assert.Equal(t, 65, cost)
	_, ok = ob.CrossingCost(domain.SideYes)
	assert.False(t, ok)
}

// --- orders ---

func TestPlaceOrder_SignedBody(t *testing.T) {
	key := testKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trade-api/v2/portfolio/orders", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("KALSHI-ACCESS-KEY"))
		assert.NotEmpty(t, r.Header.Get("KALSHI-ACCESS-SIGNATURE"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "KXHIGHCHI-26FEB12-T38", body["ticker"])
		assert.Equal(t, "buy", body["action"])
		assert.Equal(t, "no", body["side"])
		assert.Equal(t, "limit", body["type"])
		assert.EqualValues(t, 40, body["yes_price"])
		assert.EqualValues(t, 3, body["count"])
		assert.NotEmpty(t, body["client_order_id"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"order":{"order_id":"ord-9","status":"executed","fill_count":3}}`))
	}))
	defer srv.Close()

	c := newClient(srv, &kalshi.Credentials{KeyID: "key-1", PrivateKey: key})
	res, err := c.PlaceOrder(context.Background(), domain.OrderRequest{
		Ticker: "KXHIGHCHI-26FEB12-T38", Side: domain.SideNo, YesPrice: 40, Count: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-9", res.OrderID)
	assert.True(t, res.Filled)
	assert.False(t, res.DryRun)
}

func TestPlaceOrder_DuplicateAfterTimeoutIsReconciled(t *testing.T) {
	key := testKey(t)
	var posts int
	var clientID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts++
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if posts == 1 {
				// El primer intento entra pero la respuesta se pierde.
				clientID = body["client_order_id"].(string)
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			assert.Equal(t, clientID, body["client_order_id"])
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":{"code":"order_already_exists"}}`))
		case http.MethodGet:
			assert.Equal(t, "/trade-api/v2/portfolio/orders", r.URL.Path)
			assert.Equal(t, "KXHIGHCHI-26FEB12-T38", r.URL.Query().Get("ticker"))
			w.Write([]byte(`{"orders":[
				{"order_id":"ord-other","client_order_id":"someone-else","status":"resting","fill_count":0},
				{"order_id":"ord-7","client_order_id":"` + clientID + `","status":"executed","fill_count":2}]}`))
		}
	}))
	defer srv.Close()

	c := newClient(srv, &kalshi.Credentials{KeyID: "key-1", PrivateKey: key})
	res, err := c.PlaceOrder(context.Background(), domain.OrderRequest{
		Ticker: "KXHIGHCHI-26FEB12-T38", Side: domain.SideYes, YesPrice: 40, Count: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, posts)
	assert.Equal(t, "ord-7", res.OrderID)
	assert.True(t, res.Filled)
	assert.Equal(t, 2, res.FillCount)
}

func TestPlaceOrder_RejectionStaysAnError(t *testing.T) {
	key := testKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":"insufficient_balance"}}`))
			return
		}
		w.Write([]byte(`{"orders":[]}`))
	}))
	defer srv.Close()

	c := newClient(srv, &kalshi.Credentials{KeyID: "key-1", PrivateKey: key})
	_, err := c.PlaceOrder(context.Background(), domain.OrderRequest{
		Ticker: "KXHIGHCHI-26FEB12-T38", Side: domain.SideYes, YesPrice: 40, Count: 2,
	})
	var apiErr *httpclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestPlaceOrder_DryRunSendsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not hit the API")
	}))
	defer srv.Close()

	res, err := newClient(srv, nil).PlaceOrder(context.Background(), domain.OrderRequest{
		Ticker: "KXHIGHCHI-26FEB12-T38", Side: domain.SideYes, YesPrice: 40, Count: 1, DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.False(t, res.Filled)
	assert.NotEmpty(t, res.OrderID)
}

func TestPlaceOrder_Validation(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c := newClient(srv, nil)

	_, err := c.PlaceOrder(context.Background(), domain.OrderRequest{Ticker: "X", Side: domain.SideYes, YesPrice: 0, Count: 1})
	assert.Error(t, err)
	_, err = c.PlaceOrder(context.Background(), domain.OrderRequest{Ticker: "X", Side: domain.SideYes, YesPrice: 50, Count: 1})
	assert.ErrorIs(t, err, kalshi.ErrNoCredentials)
}

func TestGetBalance(t *testing.T) {
	key := testKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade-api/v2/portfolio/balance", r.URL.Path)
		w.Write([]byte(`{"balance":12345,"portfolio_value":200}`))
	}))
	defer srv.Close()

	bal, err := newClient(srv, &kalshi.Credentials{KeyID: "k", PrivateKey: key}).GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12345, bal)
}

func TestBaseURLFor(t *testing.T) {
	assert.Equal(t, kalshi.DemoBaseURL, kalshi.BaseURLFor(domain.ModeDemo))
	assert.Equal(t, kalshi.ProdBaseURL, kalshi.BaseURLFor(domain.ModeLive))
	assert.Equal(t, kalshi.ProdBaseURL, kalshi.BaseURLFor(domain.ModeDry))
}
