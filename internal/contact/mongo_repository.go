package contact

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	messages    *mongo.Collection
	subscribers *mongo.Collection
}

func newMongoRepository(db *mongo.Database) *mongoRepository {
	return &mongoRepository{
		messages:    db.Collection("contact_messages"),
		subscribers: db.Collection("subscribers"),
	}
}

func (m *mongoRepository) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if _, err := m.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}

func (m *mongoRepository) AddSubscriber(ctx context.Context, sub *Subscriber) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	_, err := m.subscribers.InsertOne(ctx, sub)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadySubscribed
	}
	if err != nil {
		return fmt.Errorf("failed to add subscriber: %w", err)
	}
	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.subscribers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create subscriber index: %w", err)
	}

	_, err = m.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(365 * 24 * 60 * 60), // 1 year TTL
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}
