// Package scanner runs the scan/decide/size/submit loop: fetch fresh prices
// and account state, ask the account's strategy for signals, size each signal
// from the freshly fetched balance, gate it through the risk and dedup
// policies, and submit what survives. One consolidated loop replaces the
// per-variant scripts; the variants differ only in configuration.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/fxscan/broker"
	"github.com/rustyeddy/fxscan/journal"
	"github.com/rustyeddy/fxscan/ledger"
	"github.com/rustyeddy/fxscan/market"
	"github.com/rustyeddy/fxscan/metrics"
	"github.com/rustyeddy/fxscan/pkg/id"
	"github.com/rustyeddy/fxscan/reporter"
	"github.com/rustyeddy/fxscan/risk"
	"github.com/rustyeddy/fxscan/signal"
	"github.com/rustyeddy/fxscan/strategies"
)

// interAccountPause spaces out broker calls between accounts within one
// iteration, to stay clear of rate limits.
const interAccountPause = 1 * time.Second

// Account is the runtime state for one configured account.
type Account struct {
	ID           string
	StrategyName string
	Decider      strategies.Decider
	Broker       broker.Broker
	Instruments  []string

	Sizer         risk.Sizer
	Limits        risk.Limits
	MinConfidence float64

	Interval        time.Duration
	ErrorBackoff    time.Duration
	MaxTradesPerDay int
	DedupByDay      bool

	// Rolling per-instrument price history, owned here so strategy decisions
	// stay pure functions of their Context.
	histories map[string]*market.History

	nextRun time.Time
	totals  reporter.AccountSummary
}

// HistoryWindow sizes the per-instrument ring buffers.
const HistoryWindow = 64

func NewAccount(id string) *Account {
	return &Account{
		ID:        id,
		histories: make(map[string]*market.History),
	}
}

func (a *Account) history(instrument string) *market.History {
	h, ok := a.histories[instrument]
	if !ok {
		h = market.NewHistory(HistoryWindow)
		a.histories[instrument] = h
	}
	return h
}

// Scanner drives all accounts sequentially on their configured intervals.
type Scanner struct {
	accounts []*Account
	ledger   ledger.Ledger
	journal  journal.Journal
	log      *zap.SugaredLogger

	started time.Time
	now     func() time.Time // injected for ledger-rollover tests
}

func New(accounts []*Account, led ledger.Ledger, jrnl journal.Journal, log *zap.SugaredLogger) *Scanner {
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	return &Scanner{
		accounts: accounts,
		ledger:   led,
		journal:  jrnl,
		log:      log,
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled. Each pass scans every account that is
// due, then sleeps until the next one is. Per-account failures never abort
// the loop; only cancellation does.
func (s *Scanner) Run(ctx context.Context) error {
	s.started = s.now()
	s.log.Infow("scanner starting", "accounts", len(s.accounts))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.now()
		next := now.Add(time.Minute)

		for i, acct := range s.accounts {
			if acct.nextRun.After(now) {
				if acct.nextRun.Before(next) {
					next = acct.nextRun
				}
				continue
			}

			sum := s.scanAccount(ctx, acct)

			wait := acct.Interval
			if sum.fetchFailed {
				// Shorter backoff after a failed fetch; the account is
				// skipped for this iteration, not the whole process.
				wait = acct.ErrorBackoff
				if wait <= 0 {
					wait = acct.Interval
				}
			}
			acct.nextRun = s.now().Add(wait)
			if acct.nextRun.Before(next) {
				next = acct.nextRun
			}

			if i < len(s.accounts)-1 {
				if !sleepCtx(ctx, interAccountPause) {
					return ctx.Err()
				}
			}
		}

		if d := time.Until(next); d > 0 {
			if !sleepCtx(ctx, d) {
				return ctx.Err()
			}
		}
	}
}

// Totals returns the per-account session summaries.
func (s *Scanner) Totals() []reporter.AccountSummary {
	out := make([]reporter.AccountSummary, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.totals)
	}
	return out
}

func (s *Scanner) Started() time.Time { return s.started }

// iterSummary is one account's outcome for one iteration.
type iterSummary struct {
	quotes      int
	signals     int
	submitted   int
	rejected    int
	skipped     int
	errors      int
	fetchFailed bool
}

// scanAccount runs one full iteration for one account. It is the fault
// boundary: nothing below it escapes, including panics from strategy objects.
func (s *Scanner) scanAccount(ctx context.Context, acct *Account) (sum iterSummary) {
	log := s.log.With("account", acct.ID, "strategy", acct.StrategyName)

	defer func() {
		if r := recover(); r != nil {
			sum.errors++
			log.Errorw("iteration panic recovered", "panic", r)
		}
		acct.totals.Account = acct.ID
		acct.totals.Strategy = acct.StrategyName
		acct.totals.Iterations++
		acct.totals.Signals += sum.signals
		acct.totals.Submitted += sum.submitted
		acct.totals.Rejected += sum.rejected
		acct.totals.Skipped += sum.skipped
		acct.totals.Errors += sum.errors
		metrics.Iterations.WithLabelValues(acct.ID).Inc()
	}()

	// FETCHING_PRICES
	quotes, err := acct.Broker.GetQuotes(ctx, acct.Instruments)
	if err != nil {
		log.Warnw("price fetch failed, backing off", "err", err)
		metrics.FetchErrors.WithLabelValues(acct.ID).Inc()
		sum.fetchFailed = true
		sum.errors++
		return sum
	}
	sum.quotes = len(quotes)

	// Fresh account state every iteration; sizing from a stale balance is
	// exactly the bug this replaces.
	account, err := acct.Broker.GetAccount(ctx)
	if err != nil {
		log.Warnw("account fetch failed, backing off", "err", err)
		metrics.FetchErrors.WithLabelValues(acct.ID).Inc()
		sum.fetchFailed = true
		sum.errors++
		return sum
	}
	metrics.AccountBalance.WithLabelValues(acct.ID).Set(account.Balance)

	for _, q := range quotes {
		acct.history(q.Instrument).Push(q.Mid())
	}

	// DECIDING / SIZING / SUBMITTING per instrument; one instrument's
	// failure never aborts the rest of the batch.
	for _, q := range quotes {
		sigs, err := acct.Decider.Decide(ctx, strategies.Context{
			Instrument: q.Instrument,
			Quote:      q,
			History:    acct.history(q.Instrument),
		})
		if err != nil {
			sum.errors++
			log.Errorw("decide failed", "instrument", q.Instrument, "err", err)
			continue
		}

		for _, sig := range sigs {
			sum.signals++
			metrics.Signals.WithLabelValues(acct.ID, sig.Instrument).Inc()

			if err := s.processSignal(ctx, acct, account, sig, &sum, log); err != nil {
				sum.errors++
				log.Errorw("signal processing failed",
					"instrument", sig.Instrument, "direction", sig.Direction, "err", err)
			}
		}
	}

	// LOGGING
	log.Infow("iteration complete",
		"quotes", sum.quotes,
		"opportunities", sum.signals,
		"executed", sum.submitted,
		"rejected", sum.rejected,
		"skipped", sum.skipped,
		"errors", sum.errors,
		"balance", account.Balance,
	)
	return sum
}

func (s *Scanner) processSignal(
	ctx context.Context,
	acct *Account,
	account broker.Account,
	sig signal.Signal,
	sum *iterSummary,
	log *zap.SugaredLogger,
) error {
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("invalid signal: %w", err)
	}

	if sig.Confidence < acct.MinConfidence {
		sum.skipped++
		metrics.Skips.WithLabelValues(acct.ID, "confidence").Inc()
		log.Debugw("skip: confidence below threshold",
			"instrument", sig.Instrument, "confidence", sig.Confidence, "min", acct.MinConfidence)
		return nil
	}

	now := s.now()

	if acct.DedupByDay {
		traded, err := s.ledger.Traded(acct.ID, sig.Instrument, now)
		if err != nil {
			return fmt.Errorf("ledger lookup: %w", err)
		}
		if traded {
			sum.skipped++
			metrics.Skips.WithLabelValues(acct.ID, "dedup").Inc()
			log.Infow("skip: already traded today", "instrument", sig.Instrument)
			return nil
		}
	}

	if acct.MaxTradesPerDay > 0 {
		n, err := s.ledger.CountTraded(acct.ID, now)
		if err != nil {
			return fmt.Errorf("ledger count: %w", err)
		}
		if n >= acct.MaxTradesPerDay {
			sum.skipped++
			metrics.Skips.WithLabelValues(acct.ID, "daily_limit").Inc()
			log.Infow("skip: daily trade limit reached",
				"instrument", sig.Instrument, "trades_today", n, "max", acct.MaxTradesPerDay)
			return nil
		}
	}

	units := acct.Sizer.Units(account.Balance, sig.StopDistance())

	decision := risk.Check(acct.Limits, risk.Snapshot{
		Balance:         account.Balance,
		MarginUsed:      account.MarginUsed,
		MarginAvailable: account.MarginAvailable,
		OpenTrades:      account.OpenTradeCount,
	}, units, sig.Entry)
	if !decision.Allowed {
		sum.skipped++
		metrics.Skips.WithLabelValues(acct.ID, "risk").Inc()
		for _, v := range decision.Violations {
			log.Infow("skip: risk check failed",
				"instrument", sig.Instrument, "code", v.Code, "msg", v.Msg)
		}
		return nil
	}

	stop := sig.Stop
	req := broker.MarketOrderRequest{
		Instrument: sig.Instrument,
		Units:      sig.SignedUnits(units),
		StopLoss:   &stop,
		ClientID:   id.New(),
	}
	if sig.TakeProfit > 0 {
		tp := sig.TakeProfit
		req.TakeProfit = &tp
	}

	// A stop request must not abandon an order already being sent; the HTTP
	// client timeout still bounds the call.
	fill, err := acct.Broker.CreateMarketOrder(context.WithoutCancel(ctx), req)
	if err != nil {
		if errors.Is(err, broker.ErrOrderRejected) {
			// Broker-side bounds (margin, trade size) are its to enforce;
			// a rejection is logged and the scan moves on.
			sum.rejected++
			metrics.OrdersRejected.WithLabelValues(acct.ID, sig.Instrument).Inc()
			log.Warnw("order rejected", "instrument", sig.Instrument, "units", req.Units, "err", err)
			return nil
		}
		return fmt.Errorf("submit order: %w", err)
	}

	sum.submitted++
	metrics.OrdersSubmitted.WithLabelValues(acct.ID, sig.Instrument).Inc()
	log.Infow("order filled",
		"instrument", sig.Instrument,
		"direction", sig.Direction,
		"units", req.Units,
		"entry", fill.Price,
		"stop", sig.Stop,
		"take_profit", sig.TakeProfit,
		"confidence", sig.Confidence,
		"trade_id", fill.TradeID,
		"reason", sig.Reason,
	)

	if acct.DedupByDay || acct.MaxTradesPerDay > 0 {
		if err := s.ledger.MarkTraded(acct.ID, sig.Instrument, now); err != nil {
			// The order is already live; a ledger write failure only
			// weakens dedup, so log and keep going.
			log.Errorw("ledger mark failed", "instrument", sig.Instrument, "err", err)
		}
	}

	rec := journal.OrderRecord{
		ID:            req.ClientID,
		BrokerTradeID: fill.TradeID,
		EntryTime:     fill.Time,
		AccountID:     acct.ID,
		StrategyName:  acct.StrategyName,
		Instrument:    sig.Instrument,
		Units:         req.Units,
		EntryPrice:    fill.Price,
		StopLoss:      sig.Stop,
		TakeProfit:    sig.TakeProfit,
		Confidence:    sig.Confidence,
		Status:        "OPEN",
	}
	if err := s.journal.RecordOrder(rec); err != nil {
		log.Errorw("journal write failed", "instrument", sig.Instrument, "err", err)
	}
	return nil
}

// sleepCtx blocks for d or until ctx is done; it reports false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
