package database

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/unigen/internal/database/mongodb"
	"github.com/Lumos-Labs-HQ/unigen/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/unigen/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/unigen/internal/database/sqlite"
)

func NewAdapter(provider string) (DatabaseAdapter, error) {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite", "sqlite3":
		return sqlite.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}
}

// NewDocumentAdapter returns the MongoDB sink. database is used when the URI
// does not name one.
func NewDocumentAdapter(database string) DatabaseAdapter {
	return mongodb.New(database)
}
