package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/unigen/internal/database/mongodb"
	"github.com/Lumos-Labs-HQ/unigen/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/unigen/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/unigen/internal/database/sqlite"
	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

func TestNewAdapter(t *testing.T) {
	cases := map[string]any{
		"postgresql": &postgres.Adapter{},
		"postgres":   &postgres.Adapter{},
		"mysql":      &mysql.Adapter{},
		"sqlite":     &sqlite.Adapter{},
		"sqlite3":    &sqlite.Adapter{},
	}
	for provider, want := range cases {
		adapter, err := NewAdapter(provider)
		require.NoError(t, err, provider)
		assert.IsType(t, want, adapter, provider)
	}

	_, err := NewAdapter("oracle")
	assert.Error(t, err)
}

func TestNewDocumentAdapter(t *testing.T) {
	assert.IsType(t, &mongodb.Adapter{}, NewDocumentAdapter("university_db"))
}

type recordingAdapter struct {
	written []string
	failOn  string
}

func (r *recordingAdapter) Connect(context.Context, string) error { return nil }
func (r *recordingAdapter) Close() error                          { return nil }
func (r *recordingAdapter) Ping(context.Context) error            { return nil }

func (r *recordingAdapter) WriteTable(_ context.Context, table *types.Table) error {
	if table.Name == r.failOn {
		return errors.New("boom")
	}
	r.written = append(r.written, table.Name)
	return nil
}

func tables(names ...string) []*types.Table {
	out := make([]*types.Table, len(names))
	for i, name := range names {
		out[i] = types.NewTable(name, []types.Column{{Name: "id", Kind: types.KindInt, PrimaryKey: true}}, 0)
	}
	return out
}

func TestWriteAllKeepsOrder(t *testing.T) {
	rec := &recordingAdapter{}
	require.NoError(t, WriteAll(context.Background(), rec, tables("Departments", "Staff", "Courses"), nil))
	assert.Equal(t, []string{"Departments", "Staff", "Courses"}, rec.written)
}

func TestWriteAllStopsAtFirstFailure(t *testing.T) {
	rec := &recordingAdapter{failOn: "Staff"}
	err := WriteAll(context.Background(), rec, tables("Departments", "Staff", "Courses"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Staff")
	assert.Equal(t, []string{"Departments"}, rec.written)
}
