package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/trade"
)

// SQLite stores trades in a single sqlite3 table. Row order is kept in the
// position column.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) LoadTrades(ctx context.Context) ([]trade.Trade, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []trade.Trade{}
	for rows.Next() {
		t, err := scanSQLiteTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTrades replaces the table contents inside one transaction.
func (j *SQLite) SaveTrades(ctx context.Context, trades []trade.Trade) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
		(position, `+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range trades {
		tags, err := json.Marshal(nonNil(t.Tags))
		if err != nil {
			return err
		}
		mistakes, err := json.Marshal(nonNil(t.Mistakes))
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			i, t.ID, t.Symbol, string(t.Direction), t.EntryPrice, t.ExitPrice,
			t.EntryDate.UTC(), t.ExitDate.UTC(), t.Quantity, t.Account, t.PnL, t.Exits,
			t.Playbook, t.EntryRating, t.ExitRating, t.DisciplineRating,
			string(tags), string(mistakes), t.Notes, t.Screenshot,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTrade(r rowScanner) (trade.Trade, error) {
	var (
		t        trade.Trade
		dir      string
		tags     string
		mistakes string
	)
	err := r.Scan(
		&t.ID,
		&t.Symbol,
		&dir,
		&t.EntryPrice,
		&t.ExitPrice,
		&t.EntryDate,
		&t.ExitDate,
		&t.Quantity,
		&t.Account,
		&t.PnL,
		&t.Exits,
		&t.Playbook,
		&t.EntryRating,
		&t.ExitRating,
		&t.DisciplineRating,
		&tags,
		&mistakes,
		&t.Notes,
		&t.Screenshot,
	)
	if err != nil {
		return trade.Trade{}, err
	}
	t.Direction = trade.Direction(dir)
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return trade.Trade{}, fmt.Errorf("trade %s tags: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(mistakes), &t.Mistakes); err != nil {
		return trade.Trade{}, fmt.Errorf("trade %s mistakes: %w", t.ID, err)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
