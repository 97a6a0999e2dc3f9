package oanda

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/fxscan/market"
)

type streamMsg struct {
	Type       string `json:"type"`
	Time       string `json:"time"`
	Instrument string `json:"instrument"`

	Bids []struct {
		Price string `json:"price"`
	} `json:"bids"`

	Asks []struct {
		Price string `json:"price"`
	} `json:"asks"`
}

// StreamQuotes connects to the OANDA pricing stream and invokes fn for each
// PRICE message until ctx is done, maxTicks quotes were delivered
// (maxTicks <= 0 means unbounded), or the stream ends. Heartbeats and
// messages without both sides are skipped.
func (c *Client) StreamQuotes(
	ctx context.Context,
	instruments []string,
	maxTicks int,
	fn func(market.Quote),
) (int, error) {
	if c.Token == "" {
		return 0, fmt.Errorf("stream: missing token")
	}
	if c.AccountID == "" {
		return 0, fmt.Errorf("stream: missing account id")
	}
	if len(instruments) == 0 {
		return 0, fmt.Errorf("stream: no instruments")
	}

	u, err := url.Parse(c.StreamURL)
	if err != nil {
		return 0, err
	}
	u.Path = fmt.Sprintf("/v3/accounts/%s/pricing/stream", c.AccountID)
	q := u.Query()
	q.Set("instruments", strings.Join(instruments, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	// The shared client has a request timeout that would kill a long-lived
	// stream; use a dedicated client without one and rely on ctx.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stream: http %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	// Stream messages can be long; bump the max token size.
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	delivered := 0
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()
		default:
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var msg streamMsg
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return delivered, fmt.Errorf("stream: bad json: %w (line=%q)", err, trimForErr(line))
		}

		if !strings.EqualFold(msg.Type, "PRICE") {
			continue
		}
		if msg.Instrument == "" || len(msg.Bids) == 0 || len(msg.Asks) == 0 {
			continue
		}

		bid, err := parseFloat(msg.Bids[0].Price)
		if err != nil {
			continue
		}
		ask, err := parseFloat(msg.Asks[0].Price)
		if err != nil {
			continue
		}

		t, err := time.Parse(time.RFC3339Nano, msg.Time)
		if err != nil {
			t = time.Now().UTC()
		}

		fn(market.Quote{Instrument: msg.Instrument, Bid: bid, Ask: ask, Time: t})

		delivered++
		if maxTicks > 0 && delivered >= maxTicks {
			return delivered, nil
		}
	}

	if err := sc.Err(); err != nil {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()
		default:
		}
		return delivered, err
	}
	return delivered, nil
}

func trimForErr(s string) string {
	const n = 200
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
