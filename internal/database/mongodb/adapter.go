package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

type Adapter struct {
	client     *mongo.Client
	database   *mongo.Database
	dbName     string
	fallbackDB string
}

// New returns an adapter that writes into fallbackDB unless the connection
// URI names a database.
func New(fallbackDB string) *Adapter {
	return &Adapter{fallbackDB: fallbackDB}
}

func (a *Adapter) Connect(ctx context.Context, url string) error {
	clientOpts := options.Client().ApplyURI(url)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	a.client = client
	a.dbName = extractDBName(url, a.fallbackDB)
	a.database = client.Database(a.dbName)
	return nil
}

func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Disconnect(context.Background())
	}
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("database not connected")
	}
	return a.client.Ping(ctx, nil)
}

// WriteTable appends the rows to the collection named after the table.
// Existing documents are kept and nothing is deduplicated.
func (a *Adapter) WriteTable(ctx context.Context, t *types.Table) error {
	if a.database == nil {
		return fmt.Errorf("database not connected")
	}
	docs := toDocuments(t)
	if len(docs) == 0 {
		return nil
	}

	res, err := a.database.Collection(t.Name).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
	}
	if len(res.InsertedIDs) != len(docs) {
		return fmt.Errorf("inserted %d of %d documents into %s", len(res.InsertedIDs), len(docs), t.Name)
	}
	return nil
}
