package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/fxscan/market"
)

// Broker is the external system of record: account state, pricing and order
// placement all live on the other side of it.
type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	GetQuotes(ctx context.Context, instruments []string) ([]market.Quote, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
}

// Account is a point-in-time copy of broker-owned account state.
type Account struct {
	ID              string
	Currency        string
	Balance         float64
	MarginUsed      float64
	MarginAvailable float64
	OpenTradeCount  int
}

type MarketOrderRequest struct {
	Instrument string
	Units      int // signed: positive = BUY, negative = SELL
	StopLoss   *float64
	TakeProfit *float64
	ClientID   string
}

type OrderFill struct {
	OrderID    string
	TradeID    string
	Instrument string
	Units      int
	Price      float64
	Time       time.Time
}

// ErrOrderRejected marks a broker-side rejection (margin, trade size bounds,
// market halted). Callers treat it as non-fatal: log and continue.
var ErrOrderRejected = errors.New("order rejected")

type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Reason)
}

func (e *RejectionError) Unwrap() error { return ErrOrderRejected }
