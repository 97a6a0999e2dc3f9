package ledger

import (
	"errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// markTTL keeps stale day marks from accumulating; anything older than two
// days can never match a current DayKey anyway.
const markTTL = 48 * time.Hour

// Badger is the embedded-KV ledger. Marks and per-day submission counters are
// keyed by the UTC date, so the at-most-one-trade-per-day guarantee and the
// daily cap both survive process restarts.
type Badger struct {
	db *badger.DB
}

func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	// Badger's own logging would interleave with ours; errors still surface
	// through the returned values.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func badgerKey(day, accountID, instrument string) []byte {
	return []byte("trade/" + day + "/" + accountID + "/" + instrument)
}

func badgerCountKey(day, accountID string) []byte {
	return []byte("count/" + day + "/" + accountID)
}

func (b *Badger) Traded(accountID, instrument string, t time.Time) (bool, error) {
	key := badgerKey(DayKey(t), accountID, instrument)

	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkTraded writes the pair's day mark and bumps the account's submission
// counter in the same transaction. Repeat submissions on the same instrument
// overwrite the mark but still advance the counter.
func (b *Badger) MarkTraded(accountID, instrument string, t time.Time) error {
	day := DayKey(t)

	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(day, accountID, instrument),
			[]byte(t.UTC().Format(time.RFC3339))).WithTTL(markTTL)
		if err := txn.SetEntry(e); err != nil {
			return err
		}

		n, err := readCount(txn, badgerCountKey(day, accountID))
		if err != nil {
			return err
		}
		ce := badger.NewEntry(badgerCountKey(day, accountID),
			[]byte(strconv.Itoa(n+1))).WithTTL(markTTL)
		return txn.SetEntry(ce)
	})
}

func (b *Badger) CountTraded(accountID string, t time.Time) (int, error) {
	var n int
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readCount(txn, badgerCountKey(DayKey(t), accountID))
		return err
	})
	return n, err
}

func readCount(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var n int
	err = item.Value(func(val []byte) error {
		v, perr := strconv.Atoi(string(val))
		if perr != nil {
			return perr
		}
		n = v
		return nil
	})
	return n, err
}

func (b *Badger) Close() error {
	return b.db.Close()
}
