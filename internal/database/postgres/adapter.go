package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/Lumos-Labs-HQ/unigen/internal/database/common"
	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var typeMap = map[types.Kind]string{
	types.KindInt:  "INTEGER",
	types.KindText: "TEXT",
	types.KindDate: "DATE",
	types.KindTime: "TIME",
}

func New() *Adapter {
	return &Adapter{}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	if p.pool == nil {
		return fmt.Errorf("database not connected")
	}
	return p.pool.Ping(ctx)
}

func createTableSQL(t *types.Table) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)",
		pq.QuoteIdentifier(t.Name), common.ColumnDefinitions(t.Columns, typeMap, pq.QuoteIdentifier))
}

func dropTableSQL(t *types.Table) string {
	return "DROP TABLE IF EXISTS " + pq.QuoteIdentifier(t.Name) + " CASCADE"
}

// WriteTable drops and recreates the table, then bulk loads it with COPY in
// one transaction.
func (p *Adapter) WriteTable(ctx context.Context, t *types.Table) error {
	if p.pool == nil {
		return fmt.Errorf("database not connected")
	}
	if err := common.ValidateTable(t); err != nil {
		return err
	}

	rows, err := copyRows(t)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, dropTableSQL(t)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(t)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}

	if len(rows) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.Headers(), pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy into %s: %w", t.Name, err)
		}
		if int(n) != len(rows) {
			return fmt.Errorf("copy into %s wrote %d of %d rows", t.Name, n, len(rows))
		}
	}

	return tx.Commit(ctx)
}

// copyRows converts cells to the Go types pgx encodes for each column kind.
func copyRows(t *types.Table) ([][]any, error) {
	out := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		values := make([]any, len(row))
		for i, col := range t.Columns {
			v, err := copyValue(col, row[i])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", t.Name, r+1, err)
			}
			values[i] = v
		}
		out[r] = values
	}
	return out, nil
}

func copyValue(col types.Column, cell any) (any, error) {
	v := types.Unwrap(cell)
	if v == nil {
		return nil, nil
	}

	switch col.Kind {
	case types.KindInt:
		switch n := v.(type) {
		case int:
			return int32(n), nil
		case int64:
			return int32(n), nil
		}
	case types.KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case types.KindDate:
		if d, ok := v.(time.Time); ok {
			return pgtype.Date{Time: d, Valid: true}, nil
		}
	case types.KindTime:
		if s, ok := v.(string); ok {
			return parseClock(s)
		}
	}
	return nil, fmt.Errorf("column %s: unexpected %T for %s", col.Name, v, col.Kind)
}

func parseClock(s string) (pgtype.Time, error) {
	clock, err := time.Parse(types.TimeLayout, s)
	if err != nil {
		return pgtype.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	micros := int64(clock.Hour())*int64(time.Hour/time.Microsecond) +
		int64(clock.Minute())*int64(time.Minute/time.Microsecond) +
		int64(clock.Second())*int64(time.Second/time.Microsecond)
	return pgtype.Time{Microseconds: micros, Valid: true}, nil
}
