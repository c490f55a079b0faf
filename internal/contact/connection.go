package contact

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoPingTimeout = 5 * time.Second

// Open connects to MongoDB, makes sure the contact indexes exist and returns
// the repository together with the func that disconnects it.
func Open(ctx context.Context, uri, database string) (Repository, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("storefront-contact").
		SetServerSelectionTimeout(mongoPingTimeout).
		SetMaxPoolSize(20))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	repo := newMongoRepository(client.Database(database))
	if err := repo.CreateIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return repo, client.Disconnect, nil
}
