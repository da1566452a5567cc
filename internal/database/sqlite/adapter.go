package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Lumos-Labs-HQ/unigen/internal/database/common"
	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

type Adapter struct {
	db        *sqlx.DB
	qb        squirrel.StatementBuilderType
	path      string
	batchSize int
}

// Dates and times are stored as ISO text, the same form the CSV sink writes.
var typeMap = map[types.Kind]string{
	types.KindInt:  "INTEGER",
	types.KindText: "TEXT",
	types.KindDate: "TEXT",
	types.KindTime: "TEXT",
}

func New() *Adapter {
	return &Adapter{
		qb:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		batchSize: common.DefaultBatchSize,
	}
}

// Connect opens the database file named by url. Both "sqlite://path" and a
// bare path are accepted.
func (s *Adapter) Connect(ctx context.Context, url string) error {
	s.path = strings.TrimPrefix(strings.TrimPrefix(url, "sqlite3://"), "sqlite://")
	if s.path == "" {
		return fmt.Errorf("empty SQLite database path")
	}

	dsn := s.path
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	return s.db.PingContext(ctx)
}

func quote(name string) string {
	return `"` + name + `"`
}

func (s *Adapter) createTableSQL(t *types.Table) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name), common.ColumnDefinitions(t.Columns, typeMap, quote))
}

// WriteTable drops and recreates the table, then inserts every row in
// batches inside one transaction.
func (s *Adapter) WriteTable(ctx context.Context, t *types.Table) error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	if err := common.ValidateTable(t); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(t.Name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, s.createTableSQL(t)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}

	columns := common.QuotedColumns(t, quote)
	for _, batch := range common.Batches(t.Len(), s.batchSize) {
		insert := s.qb.Insert(quote(t.Name)).Columns(columns...)
		for _, row := range t.Rows[batch[0]:batch[1]] {
			values := make([]any, len(row))
			for i, v := range row {
				values[i] = common.SQLValue(v, true)
			}
			insert = insert.Values(values...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}
	return nil
}
