package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

// Decision is the result of the pre-trade gate. A disallowed decision is not
// an error; the scanner logs the violations and skips the trade.
type Decision struct {
	Allowed    bool
	Violations []Violation

	PositionValue float64
	PositionPct   float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Limits are the per-account pre-trade constraints.
type Limits struct {
	// MaxPositionPct caps position value as a fraction of balance.
	// Zero disables the check.
	MaxPositionPct float64
	// MaxOpenTrades caps concurrently open broker positions.
	// Zero disables the check.
	MaxOpenTrades int
}

// Snapshot is the point-in-time account view used by the gate. It is
// re-fetched every iteration, never cached.
type Snapshot struct {
	Balance         float64
	MarginUsed      float64
	MarginAvailable float64
	OpenTrades      int
}

// Check applies the pre-trade gate for a proposed order of units at entry.
func Check(lim Limits, acct Snapshot, units int, entry float64) Decision {
	d := Decision{Allowed: true}

	if units <= 0 {
		d.add("NO_UNITS", "units must be positive")
		return d
	}
	if acct.Balance <= 0 {
		d.add("NO_BALANCE", "account balance must be positive")
		return d
	}

	d.PositionValue = float64(units) * entry
	d.PositionPct = d.PositionValue / acct.Balance

	if lim.MaxPositionPct > 0 && d.PositionPct > lim.MaxPositionPct {
		d.add("POSITION_TOO_LARGE",
			fmt.Sprintf("position value %.2f is %.1f%% of balance, max %.1f%%",
				d.PositionValue, 100*d.PositionPct, 100*lim.MaxPositionPct))
	}
	if lim.MaxOpenTrades > 0 && acct.OpenTrades >= lim.MaxOpenTrades {
		d.add("TOO_MANY_OPEN_TRADES",
			fmt.Sprintf("open trades %d >= max %d", acct.OpenTrades, lim.MaxOpenTrades))
	}

	return d
}
