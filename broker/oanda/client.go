package oanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// PracticeURL is the endpoint for OANDA's practice/demo environment.
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the endpoint for OANDA's live trading environment.
	LiveURL = "https://api-fxtrade.oanda.com"

	// StreamPracticeURL and StreamLiveURL serve the chunked pricing stream.
	StreamPracticeURL = "https://stream-fxpractice.oanda.com"
	StreamLiveURL     = "https://stream-fxtrade.oanda.com"

	defaultTimeout = 15 * time.Second
)

// Client is a thin REST pass-through over the OANDA v3 API.
type Client struct {
	BaseURL   string
	StreamURL string
	Token     string
	AccountID string
	HTTP      *http.Client
}

// BaseURLs maps an environment name to the REST and stream endpoints.
func BaseURLs(env string) (rest, stream string, err error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "practice", "demo", "":
		return PracticeURL, StreamPracticeURL, nil
	case "live":
		return LiveURL, StreamLiveURL, nil
	default:
		return "", "", fmt.Errorf("unknown OANDA env %q (want practice|live)", env)
	}
}

// NewClientFromEnv builds a client from OANDA_API_KEY, OANDA_ACCOUNT_ID and
// OANDA_ENVIRONMENT. Missing credentials are a startup error, not something
// the scan loop should discover mid-run.
func NewClientFromEnv() (*Client, error) {
	token := os.Getenv("OANDA_API_KEY")
	if token == "" {
		return nil, fmt.Errorf("OANDA_API_KEY is not set")
	}
	accountID := os.Getenv("OANDA_ACCOUNT_ID")
	if accountID == "" {
		return nil, fmt.Errorf("OANDA_ACCOUNT_ID is not set")
	}
	rest, stream, err := BaseURLs(os.Getenv("OANDA_ENVIRONMENT"))
	if err != nil {
		return nil, err
	}
	return NewClient(rest, stream, token, accountID), nil
}

func NewClient(baseURL, streamURL, token, accountID string) *Client {
	return &Client{
		BaseURL:   baseURL,
		StreamURL: streamURL,
		Token:     token,
		AccountID: accountID,
		// A hung broker call must not stall the whole scanner; every request
		// carries this timeout in addition to the caller's context.
		HTTP: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	u.Path = path

	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.Token)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("oanda http %d: %s", e.Status, e.Body)
}

// parseFloat handles OANDA's decimal-as-string wire convention.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty decimal")
	}
	return strconv.ParseFloat(s, 64)
}
