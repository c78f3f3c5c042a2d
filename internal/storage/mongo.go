package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type kvRecord struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoStore keeps key/value pairs in a single "kv" collection, one
// document per key.
type MongoStore struct {
	client *mongo.Client
	Col    *mongo.Collection
}

func NewMongoStore(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		Col:    client.Database(database).Collection("kv"),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var rec kvRecord
	err := s.Col.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key, value string) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.Col.ReplaceOne(ctx, bson.M{"_id": key}, kvRecord{Key: key, Value: value}, opts)
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.Col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
