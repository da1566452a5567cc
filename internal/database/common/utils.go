package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

const DefaultBatchSize = 100

// validIdentifier validates SQL identifiers (table/column names) before they
// are formatted into statements.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ValidateTable checks the table and column names of t.
func ValidateTable(t *types.Table) error {
	if !IsValidIdentifier(t.Name) {
		return fmt.Errorf("invalid table name: %s", t.Name)
	}
	for _, col := range t.Columns {
		if !IsValidIdentifier(col.Name) {
			return fmt.Errorf("invalid column name in table %s: %s", t.Name, col.Name)
		}
	}
	return nil
}

// ColumnDefinitions renders the body of a CREATE TABLE statement.
func ColumnDefinitions(columns []types.Column, typeMap map[types.Kind]string, quote func(string) string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		def := quote(col.Name) + " " + typeMap[col.Kind]
		if col.PrimaryKey {
			def += " PRIMARY KEY"
		}
		defs[i] = def
	}
	return strings.Join(defs, ", ")
}

func QuotedColumns(t *types.Table, quote func(string) string) []string {
	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = quote(col.Name)
	}
	return cols
}

// SQLValue unwraps optionals for database/sql. Dates become strings when
// datesAsText is set.
func SQLValue(v any, datesAsText bool) any {
	switch val := types.Unwrap(v).(type) {
	case nil:
		return nil
	case time.Time:
		if datesAsText {
			return val.Format(types.DateLayout)
		}
		return val
	default:
		return val
	}
}

// Batches splits n rows into [start, end) windows of at most size rows.
func Batches(n, size int) [][2]int {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
