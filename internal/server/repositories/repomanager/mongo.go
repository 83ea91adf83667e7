package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/inventory/internal/server/repositories/items"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager vends MongoDB-backed repositories over one client.
type MongoRepositoryManager struct {
	client *mongo.Client
	items  *items.MongoRepository
}

// NewMongoRepositoryManager connects to uri and binds the repositories to
// the database named dbName. The driver connects lazily; use Ping to check
// reachability.
func NewMongoRepositoryManager(ctx context.Context, uri, dbName string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return newMongoRepositoryManager(client, dbName), nil
}

func newMongoRepositoryManager(client *mongo.Client, dbName string) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client: client,
		items:  items.NewMongoRepository(client.Database(dbName)),
	}
}

func (m *MongoRepositoryManager) Items() items.Repository {
	return m.items
}

// RunMigrations creates the collection indexes.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.items.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
