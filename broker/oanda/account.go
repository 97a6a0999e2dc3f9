package oanda

import (
	"context"
	"fmt"

	"github.com/rustyeddy/fxscan/broker"
)

type accountSummary struct {
	Account struct {
		ID              string `json:"id"`
		Currency        string `json:"currency"`
		Balance         string `json:"balance"`
		MarginUsed      string `json:"marginUsed"`
		MarginAvailable string `json:"marginAvailable"`
		OpenTradeCount  int    `json:"openTradeCount"`
	} `json:"account"`
}

// GetAccount fetches a fresh account summary. The scanner calls this every
// iteration; nothing here is cached.
func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	var resp accountSummary
	path := fmt.Sprintf("/v3/accounts/%s/summary", c.AccountID)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return broker.Account{}, fmt.Errorf("account summary: %w", err)
	}

	balance, err := parseFloat(resp.Account.Balance)
	if err != nil {
		return broker.Account{}, fmt.Errorf("parse balance %q: %w", resp.Account.Balance, err)
	}
	marginUsed, err := parseFloat(resp.Account.MarginUsed)
	if err != nil {
		return broker.Account{}, fmt.Errorf("parse marginUsed %q: %w", resp.Account.MarginUsed, err)
	}
	marginAvail, err := parseFloat(resp.Account.MarginAvailable)
	if err != nil {
		return broker.Account{}, fmt.Errorf("parse marginAvailable %q: %w", resp.Account.MarginAvailable, err)
	}

	return broker.Account{
		ID:              resp.Account.ID,
		Currency:        resp.Account.Currency,
		Balance:         balance,
		MarginUsed:      marginUsed,
		MarginAvailable: marginAvail,
		OpenTradeCount:  resp.Account.OpenTradeCount,
	}, nil
}
