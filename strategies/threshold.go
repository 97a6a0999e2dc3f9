package strategies

import (
	"context"
	"fmt"

	"github.com/rustyeddy/fxscan/signal"
)

// Threshold fires a single fixed-direction signal when the mid price is past
// a configured level. Deliberately simple; the point of this variant is to
// trade rarely.
type Threshold struct {
	Level     float64
	Direction signal.Direction
	StopPips  float64
	RR        float64
}

func init() {
	Register("threshold", func(p Params) (Decider, error) {
		dir := signal.Direction(p.Direction)
		if dir != signal.Buy && dir != signal.Sell {
			return nil, fmt.Errorf("threshold: direction must be BUY or SELL, got %q", p.Direction)
		}
		if p.Level <= 0 {
			return nil, fmt.Errorf("threshold: level must be positive, got %v", p.Level)
		}
		return &Threshold{
			Level:     p.Level,
			Direction: dir,
			StopPips:  p.StopPips,
			RR:        p.RR,
		}, nil
	})
}

func (t *Threshold) Name() string { return "threshold" }

func (t *Threshold) Decide(_ context.Context, in Context) ([]signal.Signal, error) {
	if !in.Quote.Tradeable() {
		return nil, nil
	}

	mid := in.Quote.Mid()
	triggered := (t.Direction == signal.Buy && mid > t.Level) ||
		(t.Direction == signal.Sell && mid < t.Level)
	if !triggered {
		return nil, nil
	}

	entry := in.Quote.Ask
	if t.Direction == signal.Sell {
		entry = in.Quote.Bid
	}

	stop, tp, err := stopTarget(in.Instrument, entry, t.StopPips, t.RR, t.Direction)
	if err != nil {
		return nil, err
	}

	s := signal.Signal{
		Instrument: in.Instrument,
		Direction:  t.Direction,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: tp,
		Confidence: 0.5,
		Reason:     fmt.Sprintf("mid %.5f past level %.5f", mid, t.Level),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []signal.Signal{s}, nil
}
