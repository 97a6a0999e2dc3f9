package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(r OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, broker_trade_id, entry_time, account_id, strategy_name,
		 instrument, units, entry_price, stop_loss, take_profit, confidence,
		 status, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BrokerTradeID, r.EntryTime, r.AccountID, r.StrategyName,
		r.Instrument, r.Units, r.EntryPrice, r.StopLoss, r.TakeProfit,
		r.Confidence, r.Status, r.RealizedPL,
	)
	return err
}

func (j *SQLiteJournal) ListRecent(limit int) ([]OrderRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.Query(`
		SELECT trade_id, broker_trade_id, entry_time, account_id, strategy_name,
		       instrument, units, entry_price, stop_loss, take_profit,
		       confidence, status, realized_pl
		FROM trades
		ORDER BY entry_time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var r OrderRecord
		if err := rows.Scan(&r.ID, &r.BrokerTradeID, &r.EntryTime, &r.AccountID,
			&r.StrategyName, &r.Instrument, &r.Units, &r.EntryPrice, &r.StopLoss,
			&r.TakeProfit, &r.Confidence, &r.Status, &r.RealizedPL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
