package strategies

import (
	"context"
	"fmt"
	"math"

	"github.com/rustyeddy/fxscan/signal"
)

// Momentum is the pluggable strategy-object variant: it measures the return
// across the history window and trades in the direction of the move, with
// confidence proportional to its size.
type Momentum struct {
	Window     int
	MinMovePct float64 // e.g. 0.001 = 0.1% across the window
	StopPips   float64
	RR         float64
}

func init() {
	Register("momentum", func(p Params) (Decider, error) {
		if p.MinMovePct <= 0 {
			p.MinMovePct = 0.001
		}
		return &Momentum{
			Window:     p.Window,
			MinMovePct: p.MinMovePct,
			StopPips:   p.StopPips,
			RR:         p.RR,
		}, nil
	})
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Decide(_ context.Context, in Context) ([]signal.Signal, error) {
	if !in.Quote.Tradeable() || in.History == nil {
		return nil, nil
	}
	if in.History.Len() < m.Window {
		return nil, nil
	}

	prices := in.History.Prices()
	first := prices[0]
	last := prices[len(prices)-1]
	if first <= 0 {
		return nil, nil
	}

	move := (last - first) / first
	if math.Abs(move) < m.MinMovePct {
		return nil, nil
	}

	dir := signal.Buy
	entry := in.Quote.Ask
	if move < 0 {
		dir = signal.Sell
		entry = in.Quote.Bid
	}

	stop, tp, err := stopTarget(in.Instrument, entry, m.StopPips, m.RR, dir)
	if err != nil {
		return nil, err
	}

	conf := math.Min(1.0, math.Abs(move)/(2*m.MinMovePct))

	s := signal.Signal{
		Instrument: in.Instrument,
		Direction:  dir,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: tp,
		Confidence: conf,
		Reason:     fmt.Sprintf("%.3f%% move over %d samples", move*100, m.Window),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []signal.Signal{s}, nil
}
