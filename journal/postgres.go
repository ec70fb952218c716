package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rustyeddy/tradejournal/trade"
)

// Postgres stores trades in a PostgreSQL table through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn, verifies the connection and applies the schema.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) LoadTrades(ctx context.Context) ([]trade.Trade, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []trade.Trade{}
	for rows.Next() {
		t, err := scanPgTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTrades replaces the table contents inside one transaction.
func (p *Postgres) SaveTrades(ctx context.Context, trades []trade.Trade) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM trades`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, t := range trades {
		batch.Queue(`
			INSERT INTO trades (position, `+tradeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			i, t.ID, t.Symbol, string(t.Direction), t.EntryPrice, t.ExitPrice,
			t.EntryDate.UTC(), t.ExitDate.UTC(), t.Quantity, t.Account, t.PnL, t.Exits,
			t.Playbook, t.EntryRating, t.ExitRating, t.DisciplineRating,
			nonNil(t.Tags), nonNil(t.Mistakes), t.Notes, t.Screenshot,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, t := range trades {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isDuplicateKeyError(err) {
				return fmt.Errorf("trade %s stored twice: %w", t.ID, err)
			}
			return fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (p *Postgres) GetTrade(ctx context.Context, tradeID string) (trade.Trade, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE trade_id = $1`, tradeID)
	t, err := scanPgTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return trade.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
	}
	return t, err
}

func (p *Postgres) ListTradesClosedBetween(ctx context.Context, start, end time.Time) ([]trade.Trade, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_time >= $1 AND exit_time < $2
		ORDER BY exit_time ASC, position ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trade.Trade
	for rows.Next() {
		t, err := scanPgTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanPgTrade(r pgx.Row) (trade.Trade, error) {
	var (
		t   trade.Trade
		dir string
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
		&t.Tags,
		&t.Mistakes,
		&t.Notes,
		&t.Screenshot,
	)
	if err != nil {
		return trade.Trade{}, err
	}
	t.Direction = trade.Direction(dir)
	return t, nil
}

const pgErrUniqueViolation = "23505"

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}
