package mongodb

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

// extractDBName reads the database from the URI path, falling back when the
// path is empty or names admin.
func extractDBName(url, fallback string) string {
	rest := url
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.Index(rest, "?"); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		if name := rest[idx+1:]; name != "" && name != "admin" {
			return name
		}
	}
	if fallback == "" {
		return "test"
	}
	return fallback
}

// toDocuments turns rows into ordered documents keyed by column name. Unset
// optionals are stored as null and dates as UTC datetimes.
func toDocuments(t *types.Table) []any {
	docs := make([]any, 0, t.Len())
	for _, row := range t.Rows {
		doc := make(bson.D, len(t.Columns))
		for i, col := range t.Columns {
			doc[i] = bson.E{Key: col.Name, Value: types.Unwrap(row[i])}
		}
		docs = append(docs, doc)
	}
	return docs
}
