package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

func schedules() *types.Table {
	table := types.NewTable("Schedules", []types.Column{
		{Name: "schedule_id", Kind: types.KindInt, PrimaryKey: true},
		{Name: "day_of_week", Kind: types.KindText},
		{Name: "start_time", Kind: types.KindTime},
		{Name: "starts_on", Kind: types.KindDate, Nullable: true},
	}, 2)
	table.Rows = append(table.Rows,
		types.Row{1, "Monday", "09:15:30", types.Some(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC))},
		types.Row{2, "Friday", "23:59:59", types.None[time.Time]()},
	)
	return table
}

func TestCreateTableSQL(t *testing.T) {
	assert.Equal(t,
		`CREATE TABLE "Schedules" ("schedule_id" INTEGER PRIMARY KEY, "day_of_week" TEXT, "start_time" TIME, "starts_on" DATE)`,
		createTableSQL(schedules()))
	assert.Equal(t, `DROP TABLE IF EXISTS "Schedules" CASCADE`, dropTableSQL(schedules()))
}

func TestCopyRows(t *testing.T) {
	rows, err := copyRows(schedules())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int32(1), rows[0][0])
	assert.Equal(t, "Monday", rows[0][1])
	assert.Equal(t, pgtype.Time{Microseconds: (9*3600 + 15*60 + 30) * 1_000_000, Valid: true}, rows[0][2])
	assert.Equal(t, pgtype.Date{Time: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Valid: true}, rows[0][3])
	assert.Nil(t, rows[1][3])
}

func TestCopyRowsRejectsMismatchedKinds(t *testing.T) {
	table := schedules()
	table.Rows[0][0] = "one"
	_, err := copyRows(table)
	assert.Error(t, err)

	table = schedules()
	table.Rows[0][2] = "9am"
	_, err = copyRows(table)
	assert.Error(t, err)
}

func TestWriteTableRequiresConnection(t *testing.T) {
	assert.Error(t, New().WriteTable(context.Background(), schedules()))
	assert.Error(t, New().Ping(context.Background()))
}

func TestConnectRejectsBadURL(t *testing.T) {
	assert.Error(t, New().Connect(context.Background(), "postgres://%zz"))
}
