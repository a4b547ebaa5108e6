// internal/app/store/kv/mongo.go
package kv

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoCollection is the collection holding key-value documents.
const MongoCollection = "kv"

type kvDoc struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// MongoStore is a Store backed by one Mongo collection. The TTL monitor
// only sweeps about once a minute, so Get also checks expires_at itself.
type MongoStore struct {
	client *mongo.Client
	c      *mongo.Collection
	now    func() time.Time
}

// NewMongo wraps db.Collection(MongoCollection). The client is not owned
// by the store unless it was created by ConnectMongo.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{c: db.Collection(MongoCollection), now: time.Now}
}

// ConnectMongo dials uri, pings the primary and returns a store that
// disconnects the client on Close.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s := NewMongo(client.Database(database))
	s.client = client
	return s, nil
}

// EnsureIndexes creates the TTL index used for natural expiry.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("kv_expires_at_ttl").SetExpireAfterSeconds(0),
	})
	return err
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc kvDoc
	err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if doc.ExpiresAt != nil && !s.now().Before(*doc.ExpiresAt) {
		return "", ErrNotFound
	}
	return doc.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	doc := kvDoc{Key: key, Value: value}
	if ttl > 0 {
		exp := s.now().UTC().Add(ttl)
		doc.ExpiresAt = &exp
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.c.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
