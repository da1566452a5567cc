package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

// DatabaseAdapter is a sink that can persist generated tables.
type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// WriteTable replaces the stored contents of the table with its rows.
	WriteTable(ctx context.Context, table *types.Table) error
}

// WriteAll writes tables in the given order and stops at the first failure.
// Tables written before the failure are left in place.
func WriteAll(ctx context.Context, adapter DatabaseAdapter, tables []*types.Table, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, table := range tables {
		start := time.Now()
		if err := adapter.WriteTable(ctx, table); err != nil {
			return fmt.Errorf("failed to write %s: %w", table.Name, err)
		}
		logger.Debug("table written",
			zap.String("table", table.Name),
			zap.Int("rows", table.Len()),
			zap.Duration("took", time.Since(start)),
		)
	}
	return nil
}
