// journal/journal.go
package journal

import "time"

// OrderRecord is one submitted order as logged by the scanner. RealizedPL and
// Status are filled in later by broker-side reconciliation; at submission time
// Status is "OPEN".
type OrderRecord struct {
	ID            string // ULID, time-sortable
	BrokerTradeID string
	EntryTime     time.Time
	AccountID     string
	StrategyName  string
	Instrument    string
	Units         int // signed
	EntryPrice    float64
	StopLoss      float64
	TakeProfit    float64
	Confidence    float64
	Status        string
	RealizedPL    float64
}

type Journal interface {
	RecordOrder(OrderRecord) error
	ListRecent(limit int) ([]OrderRecord, error)
	Close() error
}

// Nop discards every record; used when no journal path is configured.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error         { return nil }
func (Nop) ListRecent(int) ([]OrderRecord, error) { return nil, nil }
func (Nop) Close() error                          { return nil }
