package oanda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxscan/broker"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL, "test-token", "101-001-123")
}

func TestBaseURLs(t *testing.T) {
	t.Parallel()

	rest, stream, err := BaseURLs("practice")
	require.NoError(t, err)
	assert.Equal(t, PracticeURL, rest)
	assert.Equal(t, StreamPracticeURL, stream)

	rest, _, err = BaseURLs("live")
	require.NoError(t, err)
	assert.Equal(t, LiveURL, rest)

	// Empty defaults to practice; never default to live.
	rest, _, err = BaseURLs("")
	require.NoError(t, err)
	assert.Equal(t, PracticeURL, rest)

	_, _, err = BaseURLs("staging")
	assert.Error(t, err)
}

func TestGetAccount(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/101-001-123/summary", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"account": map[string]any{
				"id":              "101-001-123",
				"currency":        "USD",
				"balance":         "10000.50",
				"marginUsed":      "250.00",
				"marginAvailable": "9750.50",
				"openTradeCount":  2,
			},
		})
	})

	acct, err := c.GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "101-001-123", acct.ID)
	assert.Equal(t, "USD", acct.Currency)
	assert.InDelta(t, 10000.50, acct.Balance, 1e-9)
	assert.InDelta(t, 250.00, acct.MarginUsed, 1e-9)
	assert.Equal(t, 2, acct.OpenTradeCount)
}

func TestGetQuotes(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/101-001-123/pricing", r.URL.Path)
		assert.Equal(t, "EUR_USD,XAU_USD", r.URL.Query().Get("instruments"))

		json.NewEncoder(w).Encode(map[string]any{
			"prices": []map[string]any{
				{
					"instrument": "EUR_USD",
					"time":       "2025-03-10T14:00:00.000000000Z",
					"tradeable":  true,
					"bids":       []map[string]string{{"price": "1.0849"}},
					"asks":       []map[string]string{{"price": "1.0851"}},
				},
				{
					// Halted instrument is skipped, not an error.
					"instrument": "XAU_USD",
					"time":       "2025-03-10T14:00:00.000000000Z",
					"tradeable":  false,
					"bids":       []map[string]string{{"price": "2900.10"}},
					"asks":       []map[string]string{{"price": "2900.60"}},
				},
			},
		})
	})

	quotes, err := c.GetQuotes(context.Background(), []string{"EUR_USD", "XAU_USD"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "EUR_USD", quotes[0].Instrument)
	assert.InDelta(t, 1.0849, quotes[0].Bid, 1e-9)
	assert.InDelta(t, 1.0851, quotes[0].Ask, 1e-9)
	assert.Equal(t, 2025, quotes[0].Time.Year())
}

func TestGetQuotesAllUntradeable(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"prices": []map[string]any{}})
	})

	_, err := c.GetQuotes(context.Background(), []string{"EUR_USD"})
	assert.Error(t, err)
}

func TestCreateMarketOrderFilled(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/accounts/101-001-123/orders", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		order := body["order"].(map[string]any)
		assert.Equal(t, "MARKET", order["type"])
		assert.Equal(t, "EUR_USD", order["instrument"])
		assert.Equal(t, "20000", order["units"])
		sl := order["stopLossOnFill"].(map[string]any)
		assert.Equal(t, "1.08010", sl["price"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"orderCreateTransaction": map[string]any{"id": "6789"},
			"orderFillTransaction": map[string]any{
				"id":          "6790",
				"time":        "2025-03-10T14:00:01.000000000Z",
				"price":       "1.08515",
				"tradeOpened": map[string]any{"tradeID": "6791"},
			},
		})
	})

	stop := 1.0801
	tp := 1.0951
	fill, err := c.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD",
		Units:      20000,
		StopLoss:   &stop,
		TakeProfit: &tp,
		ClientID:   "01ABC",
	})
	require.NoError(t, err)
	assert.Equal(t, "6789", fill.OrderID)
	assert.Equal(t, "6791", fill.TradeID)
	assert.InDelta(t, 1.08515, fill.Price, 1e-9)
}

func TestCreateMarketOrderRejected(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"orderCreateTransaction": map[string]any{"id": "6789"},
			"orderCancelTransaction": map[string]any{"reason": "INSUFFICIENT_MARGIN"},
		})
	})

	_, err := c.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD",
		Units:      20000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, broker.ErrOrderRejected)

	var rej *broker.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "INSUFFICIENT_MARGIN", rej.Reason)
}

func TestCreateMarketOrderZeroUnits(t *testing.T) {
	t.Parallel()

	c := NewClient(PracticeURL, StreamPracticeURL, "t", "a")
	_, err := c.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{Instrument: "EUR_USD"})
	assert.Error(t, err)
}

func TestHTTPErrorSurfaced(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessage":"Insufficient authorization"}`, http.StatusUnauthorized)
	})

	_, err := c.GetAccount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.08010", formatPrice("EUR_USD", 1.0801))
	assert.Equal(t, "150.250", formatPrice("USD_JPY", 150.25))
	assert.Equal(t, "2900.10", formatPrice("XAU_USD", 2900.1))
}
