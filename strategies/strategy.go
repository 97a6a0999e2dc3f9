package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/fxscan/market"
	"github.com/rustyeddy/fxscan/signal"
)

// Context is the frozen per-instrument view a decider works from. The scanner
// owns the history buffer; deciders hold no state of their own, so deciding
// twice on the same Context yields the same signals.
type Context struct {
	Instrument string
	Quote      market.Quote
	History    *market.History
}

// Decider turns a Context into zero or more trade signals.
type Decider interface {
	Name() string
	Decide(ctx context.Context, in Context) ([]signal.Signal, error)
}

var registry = make(map[string]func(Params) (Decider, error))

func Register(name string, ctor func(Params) (Decider, error)) {
	registry[name] = ctor
}

// Params carries the per-account tuning shared by all decider variants.
// Unused fields are ignored by variants that don't need them.
type Params struct {
	Level       float64 // threshold: fixed price level
	Direction   string  // threshold: "BUY" or "SELL"
	Window      int     // breakout/momentum: lookback samples
	BreakoutPct float64 // breakout: margin beyond the prior range
	MinMovePct  float64 // momentum: minimum move across the window
	StopPips    float64
	RR          float64 // take-profit as a multiple of stop distance
}

func (p Params) withDefaults() Params {
	if p.Window <= 0 {
		p.Window = 20
	}
	if p.StopPips <= 0 {
		p.StopPips = 20
	}
	if p.RR <= 0 {
		p.RR = 2.0
	}
	return p
}

// ByName builds a registered decider variant.
func ByName(name string, p Params) (Decider, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(names(), ", "))
	}
	return ctor(p.withDefaults())
}

func names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	return out
}

// stopTarget derives stop and take-profit prices from a pip-based stop and a
// risk-reward multiple, on the loss/profit side for dir.
func stopTarget(instrument string, entry, stopPips, rr float64, dir signal.Direction) (stop, tp float64, err error) {
	meta, ok := market.Instruments[instrument]
	if !ok {
		return 0, 0, fmt.Errorf("unknown instrument %q", instrument)
	}
	dist := stopPips * market.PipSize(meta.PipLocation)
	if dist <= 0 {
		return 0, 0, fmt.Errorf("invalid stop distance for %s (stopPips=%v)", instrument, stopPips)
	}
	if dir == signal.Buy {
		return entry - dist, entry + dist*rr, nil
	}
	return entry + dist, entry - dist*rr, nil
}
