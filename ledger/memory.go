package ledger

import (
	"sync"
	"time"
)

// Memory is the process-local ledger. It matches the behavior of the original
// scripts: empty at start, lost on restart. Use the Badger ledger when the
// dedup guarantee must survive restarts.
type Memory struct {
	mu     sync.Mutex
	marked map[string]struct{} // day|account|instrument
	counts map[string]int      // day|account -> submissions
}

func NewMemory() *Memory {
	return &Memory{
		marked: make(map[string]struct{}),
		counts: make(map[string]int),
	}
}

func memKey(day, accountID, instrument string) string {
	return day + "|" + accountID + "|" + instrument
}

func countKey(day, accountID string) string {
	return day + "|" + accountID
}

func (m *Memory) Traded(accountID, instrument string, t time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.marked[memKey(DayKey(t), accountID, instrument)]
	return ok, nil
}

func (m *Memory) MarkTraded(accountID, instrument string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := DayKey(t)
	m.marked[memKey(day, accountID, instrument)] = struct{}{}
	m.counts[countKey(day, accountID)]++
	return nil
}

func (m *Memory) CountTraded(accountID string, t time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[countKey(DayKey(t), accountID)], nil
}

func (m *Memory) Close() error { return nil }
