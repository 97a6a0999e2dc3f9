package market

import (
	"errors"
	"sync"
	"time"
)

// Quote is a point-in-time bid/ask for one instrument. A Quote is never
// mutated; the next poll supersedes it.
type Quote struct {
	Instrument string
	Bid        float64
	Ask        float64
	Time       time.Time
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// Tradeable reports whether the quote carries usable prices.
func (q Quote) Tradeable() bool {
	return q.Bid > 0 && q.Ask > 0 && q.Ask >= q.Bid
}

var ErrQuoteNotFound = errors.New("quote not found")

// QuoteStore holds the latest Quote per instrument.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]Quote)}
}

func (qs *QuoteStore) Set(q Quote) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.quotes[q.Instrument] = q
}

func (qs *QuoteStore) Get(instrument string) (Quote, error) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	q, ok := qs.quotes[instrument]
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	return q, nil
}
