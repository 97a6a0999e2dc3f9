package signal

import "fmt"

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// Signal is a strategy's request to trade. It is produced during one scan
// iteration and consumed in the same iteration; it is not persisted unless
// the order it becomes is journaled.
type Signal struct {
	Instrument string
	Direction  Direction
	Entry      float64
	Stop       float64
	TakeProfit float64
	Confidence float64 // advisory, [0, 1]
	Reason     string
}

// StopDistance returns the absolute price distance between entry and stop.
func (s Signal) StopDistance() float64 {
	if s.Direction == Buy {
		return s.Entry - s.Stop
	}
	return s.Stop - s.Entry
}

// Validate enforces the stop-side invariant: the stop must lie on the loss
// side of the entry for the signal's direction.
func (s Signal) Validate() error {
	switch s.Direction {
	case Buy, Sell:
	default:
		return fmt.Errorf("signal %s: unknown direction %q", s.Instrument, s.Direction)
	}
	if s.Entry <= 0 {
		return fmt.Errorf("signal %s: entry %.5f must be positive", s.Instrument, s.Entry)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("signal %s: confidence %.2f out of [0,1]", s.Instrument, s.Confidence)
	}
	if s.Direction == Buy && s.Entry <= s.Stop {
		return fmt.Errorf("signal %s BUY: stop %.5f must be below entry %.5f", s.Instrument, s.Stop, s.Entry)
	}
	if s.Direction == Sell && s.Stop <= s.Entry {
		return fmt.Errorf("signal %s SELL: stop %.5f must be above entry %.5f", s.Instrument, s.Stop, s.Entry)
	}
	return nil
}

// SignedUnits applies the direction's sign to a unit count
// (positive = long/BUY, negative = short/SELL).
func (s Signal) SignedUnits(units int) int {
	if s.Direction == Sell {
		return -units
	}
	return units
}
