package ledger

import "time"

// DayKey is the calendar-day component of ledger keys. Day rollover is
// handled by keying on the UTC date, so yesterday's marks simply stop
// matching; no explicit reset pass is needed.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Ledger records which (account, instrument) pairs already traded on a given
// day, enforcing at-most-one trade per pair per calendar day when the
// dedup-by-day policy is enabled.
type Ledger interface {
	// Traded reports whether the pair was already marked on the day of t.
	Traded(accountID, instrument string, t time.Time) (bool, error)
	// MarkTraded records a successful submission for the pair on the day of t.
	MarkTraded(accountID, instrument string, t time.Time) error
	// CountTraded returns how many submissions the account made on the day
	// of t, for the max-trades-per-day gate. Repeat submissions on the same
	// instrument each count; the cap bounds orders, not instruments.
	CountTraded(accountID string, t time.Time) (int, error)
	Close() error
}
