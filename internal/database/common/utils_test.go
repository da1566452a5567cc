package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

func TestBatches(t *testing.T) {
	assert.Nil(t, Batches(0, 100))
	assert.Equal(t, [][2]int{{0, 100}, {100, 200}, {200, 250}}, Batches(250, 100))
	assert.Equal(t, [][2]int{{0, 3}}, Batches(3, 0))
}

func TestValidateTable(t *testing.T) {
	ok := types.NewTable("Students", []types.Column{{Name: "student_id"}}, 0)
	assert.NoError(t, ValidateTable(ok))

	badTable := types.NewTable("Students; DROP", []types.Column{{Name: "student_id"}}, 0)
	assert.Error(t, ValidateTable(badTable))

	badColumn := types.NewTable("Students", []types.Column{{Name: "1st"}}, 0)
	assert.Error(t, ValidateTable(badColumn))
}

func TestColumnDefinitions(t *testing.T) {
	cols := []types.Column{
		{Name: "id", Kind: types.KindInt, PrimaryKey: true},
		{Name: "born", Kind: types.KindDate},
	}
	typeMap := map[types.Kind]string{types.KindInt: "INTEGER", types.KindDate: "TEXT"}
	quote := func(s string) string { return `"` + s + `"` }

	assert.Equal(t, `"id" INTEGER PRIMARY KEY, "born" TEXT`, ColumnDefinitions(cols, typeMap, quote))
}

func TestSQLValue(t *testing.T) {
	d := time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, SQLValue(types.None[time.Time](), true))
	assert.Equal(t, "2021-02-03", SQLValue(types.Some(d), true))
	assert.Equal(t, d, SQLValue(d, false))
	assert.Equal(t, 7, SQLValue(7, false))
}
