package oanda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fxscan/market"
)

type pricingResponse struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Time       string `json:"time"`
		Tradeable  bool   `json:"tradeable"`
		Bids       []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"prices"`
}

// GetQuotes fetches current pricing for the given instruments. Untradeable or
// price-less entries are skipped rather than failing the batch; the caller
// decides whether a partial result is usable.
func (c *Client) GetQuotes(ctx context.Context, instruments []string) ([]market.Quote, error) {
	if len(instruments) == 0 {
		return nil, fmt.Errorf("no instruments requested")
	}

	var resp pricingResponse
	path := fmt.Sprintf("/v3/accounts/%s/pricing", c.AccountID)
	opts := map[string]string{"instruments": strings.Join(instruments, ",")}
	if err := c.get(ctx, path, opts, &resp); err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}

	quotes := make([]market.Quote, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		if !p.Tradeable || len(p.Bids) == 0 || len(p.Asks) == 0 {
			continue
		}

		bid, err := parseFloat(p.Bids[0].Price)
		if err != nil {
			return nil, fmt.Errorf("parse bid for %s: %w", p.Instrument, err)
		}
		ask, err := parseFloat(p.Asks[0].Price)
		if err != nil {
			return nil, fmt.Errorf("parse ask for %s: %w", p.Instrument, err)
		}

		t, err := time.Parse(time.RFC3339Nano, p.Time)
		if err != nil {
			t = time.Now().UTC()
		}

		quotes = append(quotes, market.Quote{
			Instrument: p.Instrument,
			Bid:        bid,
			Ask:        ask,
			Time:       t,
		})
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("pricing: no tradeable prices returned")
	}
	return quotes, nil
}
