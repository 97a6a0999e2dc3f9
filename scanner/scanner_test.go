package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/fxscan/broker"
	"github.com/rustyeddy/fxscan/journal"
	"github.com/rustyeddy/fxscan/ledger"
	"github.com/rustyeddy/fxscan/market"
	"github.com/rustyeddy/fxscan/risk"
	"github.com/rustyeddy/fxscan/strategies"
)

// fakeBroker is an in-memory Broker that records submitted orders.
type fakeBroker struct {
	account    broker.Account
	accountErr error
	quotes     []market.Quote
	quotesErr  error
	orderErr   error

	submitted []broker.MarketOrderRequest
}

func (f *fakeBroker) GetAccount(ctx context.Context) (broker.Account, error) {
	if f.accountErr != nil {
		return broker.Account{}, f.accountErr
	}
	return f.account, nil
}

func (f *fakeBroker) GetQuotes(ctx context.Context, instruments []string) ([]market.Quote, error) {
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	return f.quotes, nil
}

func (f *fakeBroker) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	if f.orderErr != nil {
		return broker.OrderFill{}, f.orderErr
	}
	f.submitted = append(f.submitted, req)
	return broker.OrderFill{
		OrderID:    "o-1",
		TradeID:    "t-1",
		Instrument: req.Instrument,
		Units:      req.Units,
		Price:      1.0851,
		Time:       time.Now().UTC(),
	}, nil
}

// recordingJournal captures records in memory.
type recordingJournal struct {
	records []journal.OrderRecord
}

func (r *recordingJournal) RecordOrder(rec journal.OrderRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingJournal) ListRecent(int) ([]journal.OrderRecord, error) { return r.records, nil }
func (r *recordingJournal) Close() error                                  { return nil }

func eurusdQuote() market.Quote {
	return market.Quote{Instrument: "EUR_USD", Bid: 1.0849, Ask: 1.0851, Time: time.Now()}
}

// thresholdAccount wires a BUY-above-1.0 threshold account with a 50 pip stop
// so the stop distance is exactly 0.0050.
func thresholdAccount(t *testing.T, id string, b broker.Broker) *Account {
	t.Helper()

	decider, err := strategies.ByName("threshold", strategies.Params{
		Level: 1.0, Direction: "BUY", StopPips: 50, RR: 2,
	})
	require.NoError(t, err)

	a := NewAccount(id)
	a.StrategyName = "threshold"
	a.Decider = decider
	a.Broker = b
	a.Instruments = []string{"EUR_USD"}
	a.Sizer = risk.NewSizer(0.01, 10000)
	a.Interval = time.Minute
	a.ErrorBackoff = time.Second
	return a
}

func newTestScanner(accounts []*Account, led ledger.Ledger, jrnl journal.Journal) *Scanner {
	s := New(accounts, led, jrnl, zap.NewNop().Sugar())
	s.now = func() time.Time {
		return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	}
	return s
}

func TestScanSizesFromRiskFraction(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	jrnl := &recordingJournal{}
	acct := thresholdAccount(t, "acct-1", fb)
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), jrnl)

	sum := s.scanAccount(context.Background(), acct)

	assert.Equal(t, 1, sum.signals)
	assert.Equal(t, 1, sum.submitted)
	require.Len(t, fb.submitted, 1)

	// $10,000 * 1% / 0.0050 = 20,000 units, long.
	req := fb.submitted[0]
	assert.Equal(t, 20000, req.Units)
	assert.Equal(t, "EUR_USD", req.Instrument)
	require.NotNil(t, req.StopLoss)
	assert.InDelta(t, 1.0801, *req.StopLoss, 1e-9)
	require.NotNil(t, req.TakeProfit)

	// The submission is journaled as an open trade.
	require.Len(t, jrnl.records, 1)
	rec := jrnl.records[0]
	assert.Equal(t, "acct-1", rec.AccountID)
	assert.Equal(t, "threshold", rec.StrategyName)
	assert.Equal(t, 20000, rec.Units)
	assert.Equal(t, "OPEN", rec.Status)
	assert.NotEmpty(t, rec.ID)
}

func TestFetchFailureIsolatedPerAccount(t *testing.T) {
	t.Parallel()

	failing := &fakeBroker{quotesErr: errors.New("connection reset")}
	healthy := &fakeBroker{
		account: broker.Account{ID: "acct-b", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}

	acctA := thresholdAccount(t, "acct-a", failing)
	acctB := thresholdAccount(t, "acct-b", healthy)
	s := newTestScanner([]*Account{acctA, acctB}, ledger.NewMemory(), nil)

	sumA := s.scanAccount(context.Background(), acctA)
	sumB := s.scanAccount(context.Background(), acctB)

	// Account A's failure is contained; account B still trades.
	assert.True(t, sumA.fetchFailed)
	assert.Equal(t, 0, sumA.submitted)
	assert.False(t, sumB.fetchFailed)
	assert.Equal(t, 1, sumB.submitted)
	assert.Len(t, healthy.submitted, 1)
}

func TestAccountFetchFailureBacksOff(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		accountErr: errors.New("503 service unavailable"),
		quotes:     []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	sum := s.scanAccount(context.Background(), acct)

	assert.True(t, sum.fetchFailed)
	assert.Empty(t, fb.submitted)
}

func TestDedupByDay(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	acct.DedupByDay = true
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	first := s.scanAccount(context.Background(), acct)
	assert.Equal(t, 1, first.submitted)

	// Second scan on the same day finds the ledger mark and skips.
	second := s.scanAccount(context.Background(), acct)
	assert.Equal(t, 0, second.submitted)
	assert.Equal(t, 1, second.skipped)
	assert.Len(t, fb.submitted, 1, "only one order for the day")

	// Next day the mark no longer applies.
	s.now = func() time.Time {
		return time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
	}
	third := s.scanAccount(context.Background(), acct)
	assert.Equal(t, 1, third.submitted)
	assert.Len(t, fb.submitted, 2)
}

func TestMaxTradesPerDay(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes: []market.Quote{
			eurusdQuote(),
			{Instrument: "GBP_USD", Bid: 1.2649, Ask: 1.2651, Time: time.Now()},
			{Instrument: "AUD_USD", Bid: 1.0449, Ask: 1.0451, Time: time.Now()},
		},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	acct.Instruments = []string{"EUR_USD", "GBP_USD", "AUD_USD"}
	acct.MaxTradesPerDay = 2
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	sum := s.scanAccount(context.Background(), acct)

	assert.Equal(t, 3, sum.signals)
	assert.Equal(t, 2, sum.submitted, "third signal hits the daily cap")
	assert.Equal(t, 1, sum.skipped)
}

func TestMaxTradesPerDayCapsRepeatSubmissions(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	acct.DedupByDay = false
	acct.MaxTradesPerDay = 2
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	// Without dedup the same instrument fires every scan; the daily cap must
	// still stop the third and later submissions.
	submitted := 0
	for i := 0; i < 5; i++ {
		sum := s.scanAccount(context.Background(), acct)
		submitted += sum.submitted
	}
	assert.Equal(t, 2, submitted)
	assert.Len(t, fb.submitted, 2)
}

func TestUnaffordableStopSkipsTrade(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 100},
		quotes: []market.Quote{
			{Instrument: "XAU_USD", Bid: 2900.10, Ask: 2900.60, Time: time.Now()},
		},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	acct.Instruments = []string{"XAU_USD"}
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	sum := s.scanAccount(context.Background(), acct)

	// $1 of risk over a $5 stop floors to zero units; the risk gate skips
	// the signal instead of submitting a fallback-sized order.
	assert.Equal(t, 1, sum.signals)
	assert.Equal(t, 0, sum.submitted)
	assert.Equal(t, 1, sum.skipped)
	assert.Empty(t, fb.submitted)
}

func TestConfidenceGate(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	acct.MinConfidence = 0.9 // threshold signals carry 0.5
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	sum := s.scanAccount(context.Background(), acct)

	assert.Equal(t, 1, sum.signals)
	assert.Equal(t, 0, sum.submitted)
	assert.Equal(t, 1, sum.skipped)
}

func TestPositionCapSkips(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	// 20,000 units at ~1.085 is ~217% of balance; cap at 10%.
	acct.Limits = risk.Limits{MaxPositionPct: 0.10}
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	sum := s.scanAccount(context.Background(), acct)

	assert.Equal(t, 0, sum.submitted)
	assert.Equal(t, 1, sum.skipped)
	assert.Empty(t, fb.submitted)
}

func TestOrderRejectionIsNonFatal(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account:  broker.Account{ID: "acct-1", Balance: 10000},
		quotes:   []market.Quote{eurusdQuote()},
		orderErr: &broker.RejectionError{Reason: "INSUFFICIENT_MARGIN"},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	acct.DedupByDay = true
	led := ledger.NewMemory()
	s := newTestScanner([]*Account{acct}, led, nil)

	sum := s.scanAccount(context.Background(), acct)

	assert.Equal(t, 1, sum.rejected)
	assert.Equal(t, 0, sum.submitted)
	assert.Equal(t, 0, sum.errors, "a broker rejection is not an error")

	// A rejected order must not consume the day's trade slot.
	traded, err := led.Traded("acct-1", "EUR_USD", s.now())
	require.NoError(t, err)
	assert.False(t, traded)
}

func TestFreshBalancePerIteration(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	s := newTestScanner([]*Account{acct}, ledger.NewMemory(), nil)

	s.scanAccount(context.Background(), acct)
	require.Len(t, fb.submitted, 1)
	assert.Equal(t, 20000, fb.submitted[0].Units)

	// Balance changed between iterations; sizing must follow it.
	fb.account.Balance = 5000
	s.scanAccount(context.Background(), acct)
	require.Len(t, fb.submitted, 2)
	assert.Equal(t, 10000, fb.submitted[1].Units)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	fb := &fakeBroker{
		account: broker.Account{ID: "acct-1", Balance: 10000},
		quotes:  []market.Quote{eurusdQuote()},
	}
	acct := thresholdAccount(t, "acct-1", fb)
	s := New([]*Account{acct}, ledger.NewMemory(), nil, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Give the first iteration a moment, then stop.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scanner did not stop after cancellation")
	}

	totals := s.Totals()
	require.Len(t, totals, 1)
	assert.GreaterOrEqual(t, totals[0].Iterations, 1)
}
