package oanda

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rustyeddy/fxscan/broker"
	"github.com/rustyeddy/fxscan/market"
)

type orderBody struct {
	Order struct {
		Type             string        `json:"type"`
		Instrument       string        `json:"instrument"`
		Units            string        `json:"units"`
		TimeInForce      string        `json:"timeInForce"`
		PositionFill     string        `json:"positionFill"`
		ClientExtensions *clientExt    `json:"clientExtensions,omitempty"`
		StopLossOnFill   *priceOnFill  `json:"stopLossOnFill,omitempty"`
		TakeProfitOnFill *priceOnFill  `json:"takeProfitOnFill,omitempty"`
	} `json:"order"`
}

type clientExt struct {
	ID string `json:"id"`
}

type priceOnFill struct {
	Price string `json:"price"`
}

type orderResponse struct {
	OrderCreateTransaction struct {
		ID string `json:"id"`
	} `json:"orderCreateTransaction"`
	OrderFillTransaction struct {
		ID    string `json:"id"`
		Time  string `json:"time"`
		Price string `json:"price"`
		TradeOpened struct {
			TradeID string `json:"tradeID"`
		} `json:"tradeOpened"`
	} `json:"orderFillTransaction"`
	OrderCancelTransaction struct {
		Reason string `json:"reason"`
	} `json:"orderCancelTransaction"`
	ErrorMessage string `json:"errorMessage"`
}

// CreateMarketOrder submits a market order with optional stop-loss and
// take-profit attached on fill. A broker-side cancel comes back as a
// *broker.RejectionError so callers can treat it as non-fatal.
func (c *Client) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	if req.Units == 0 {
		return broker.OrderFill{}, fmt.Errorf("market order: units must be non-zero")
	}

	var body orderBody
	body.Order.Type = "MARKET"
	body.Order.Instrument = req.Instrument
	body.Order.Units = strconv.Itoa(req.Units)
	body.Order.TimeInForce = "FOK"
	body.Order.PositionFill = "DEFAULT"
	if req.ClientID != "" {
		body.Order.ClientExtensions = &clientExt{ID: req.ClientID}
	}
	if req.StopLoss != nil {
		body.Order.StopLossOnFill = &priceOnFill{Price: formatPrice(req.Instrument, *req.StopLoss)}
	}
	if req.TakeProfit != nil {
		body.Order.TakeProfitOnFill = &priceOnFill{Price: formatPrice(req.Instrument, *req.TakeProfit)}
	}

	var resp orderResponse
	path := fmt.Sprintf("/v3/accounts/%s/orders", c.AccountID)
	if err := c.post(ctx, path, body, &resp); err != nil {
		return broker.OrderFill{}, fmt.Errorf("create order: %w", err)
	}

	if resp.OrderCancelTransaction.Reason != "" {
		return broker.OrderFill{}, &broker.RejectionError{Reason: resp.OrderCancelTransaction.Reason}
	}
	if resp.ErrorMessage != "" {
		return broker.OrderFill{}, &broker.RejectionError{Reason: resp.ErrorMessage}
	}
	if resp.OrderFillTransaction.ID == "" {
		return broker.OrderFill{}, &broker.RejectionError{Reason: "order not filled"}
	}

	price, err := parseFloat(resp.OrderFillTransaction.Price)
	if err != nil {
		return broker.OrderFill{}, fmt.Errorf("parse fill price: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, resp.OrderFillTransaction.Time)
	if err != nil {
		t = time.Now().UTC()
	}

	return broker.OrderFill{
		OrderID:    resp.OrderCreateTransaction.ID,
		TradeID:    resp.OrderFillTransaction.TradeOpened.TradeID,
		Instrument: req.Instrument,
		Units:      req.Units,
		Price:      price,
		Time:       t,
	}, nil
}

// formatPrice renders a price with the precision OANDA expects for the
// instrument (one digit finer than the pip location).
func formatPrice(instrument string, price float64) string {
	decimals := 5
	if meta, ok := market.Instruments[instrument]; ok {
		decimals = -meta.PipLocation + 1
	}
	return strconv.FormatFloat(price, 'f', decimals, 64)
}
