package types

import (
	"fmt"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

type Kind int

const (
	KindInt Kind = iota
	KindText
	KindDate
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Column struct {
	Name       string `json:"name" yaml:"name"`
	Kind       Kind   `json:"kind" yaml:"kind"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Unique     bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	RefTable   string `json:"ref_table,omitempty" yaml:"ref_table,omitempty"`
	RefColumn  string `json:"ref_column,omitempty" yaml:"ref_column,omitempty"`
	// Deferred references are filled after the referenced table exists and
	// do not order generation.
	Deferred bool `json:"deferred,omitempty" yaml:"deferred,omitempty"`
}

func (c Column) IsFK() bool {
	return c.RefTable != ""
}

// Row holds one value per column. Values are int, string, time.Time or an
// Optional wrapping one of those.
type Row []any

type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

func NewTable(name string, columns []Column, capacity int) *Table {
	if capacity < 0 {
		capacity = 0
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{
		Name:    name,
		Columns: cols,
		Rows:    make([]Row, 0, capacity),
	}
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.Name
	}
	return headers
}

func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) PrimaryKey() string {
	for _, col := range t.Columns {
		if col.PrimaryKey {
			return col.Name
		}
	}
	return ""
}

// Keys returns the primary key column as ints, in row order.
func (t *Table) Keys() []int {
	idx := t.ColumnIndex(t.PrimaryKey())
	if idx < 0 {
		return nil
	}
	keys := make([]int, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row[idx].(int); ok {
			keys = append(keys, v)
		}
	}
	return keys
}

func (t *Table) Values(column string) []any {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d values, want %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

func (t *Table) Set(row int, column string, value any) error {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return fmt.Errorf("table %s has no column %s", t.Name, column)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("table %s: row %d out of range", t.Name, row)
	}
	t.Rows[row][idx] = value
	return nil
}

// Record maps column names to unwrapped values; unset optionals become nil.
func (t *Table) Record(row int) map[string]any {
	record := make(map[string]any, len(t.Columns))
	for i, col := range t.Columns {
		record[col.Name] = Unwrap(t.Rows[row][i])
	}
	return record
}

// Optional is a value that may be absent. The zero value is unset.
type Optional[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

func (o Optional[T]) Interface() (any, bool) {
	if !o.Valid {
		return nil, false
	}
	return o.Value, true
}

type optional interface {
	Interface() (any, bool)
}

// Unwrap strips an Optional, returning nil when it is unset.
func Unwrap(v any) any {
	if o, ok := v.(optional); ok {
		inner, _ := o.Interface()
		return inner
	}
	return v
}

// IsSet reports whether v carries a value.
func IsSet(v any) bool {
	if v == nil {
		return false
	}
	if o, ok := v.(optional); ok {
		_, set := o.Interface()
		return set
	}
	return true
}

// FormatValue renders a cell the way flat files carry it. Unset values
// render as the empty string.
func FormatValue(v any) string {
	switch val := Unwrap(v).(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.Format(DateLayout)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Manifest describes one generation run.
type Manifest struct {
	RunID       string         `json:"run_id"`
	Seed        int64          `json:"seed"`
	GeneratedAt string         `json:"generated_at"`
	Version     string         `json:"version"`
	Order       []string       `json:"order"`
	Tables      map[string]int `json:"tables"`
	Files       []string       `json:"files,omitempty"`
}
