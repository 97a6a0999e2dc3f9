package strategies

import (
	"context"
	"fmt"
	"math"

	"github.com/rustyeddy/fxscan/signal"
)

// Breakout compares the current mid to the min/max of the recent history
// window and fires when the price clears the prior range by a percentage
// margin. The stop is placed at the broken extreme, so the stop distance
// tracks the size of the breakout rather than a fixed pip count.
type Breakout struct {
	Window      int
	BreakoutPct float64
	RR          float64
}

func init() {
	Register("breakout", func(p Params) (Decider, error) {
		if p.BreakoutPct < 0 {
			return nil, fmt.Errorf("breakout: margin must not be negative, got %v", p.BreakoutPct)
		}
		return &Breakout{
			Window:      p.Window,
			BreakoutPct: p.BreakoutPct,
			RR:          p.RR,
		}, nil
	})
}

func (b *Breakout) Name() string { return "breakout" }

func (b *Breakout) Decide(_ context.Context, in Context) ([]signal.Signal, error) {
	if !in.Quote.Tradeable() || in.History == nil {
		return nil, nil
	}
	// Wait for a full window before trusting the range.
	if in.History.Len() < b.Window {
		return nil, nil
	}

	lo, hi, ok := in.History.MinMax()
	if !ok {
		return nil, nil
	}

	mid := in.Quote.Mid()
	upper := hi * (1 + b.BreakoutPct)
	lower := lo * (1 - b.BreakoutPct)

	var dir signal.Direction
	var entry, stop float64
	switch {
	case mid > upper:
		dir = signal.Buy
		entry = in.Quote.Ask
		stop = hi
	case mid < lower:
		dir = signal.Sell
		entry = in.Quote.Bid
		stop = lo
	default:
		return nil, nil
	}

	dist := math.Abs(entry - stop)
	if dist <= 0 {
		return nil, nil
	}

	var tp float64
	if dir == signal.Buy {
		tp = entry + dist*b.RR
	} else {
		tp = entry - dist*b.RR
	}

	// Overshoot beyond the trigger line scales confidence up from 0.5.
	var overshoot float64
	if dir == signal.Buy {
		overshoot = (mid - upper) / upper
	} else {
		overshoot = (lower - mid) / lower
	}
	conf := math.Min(1.0, 0.5+overshoot*100)

	s := signal.Signal{
		Instrument: in.Instrument,
		Direction:  dir,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: tp,
		Confidence: conf,
		Reason:     fmt.Sprintf("mid %.5f broke range [%.5f, %.5f]", mid, lo, hi),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []signal.Signal{s}, nil
}
