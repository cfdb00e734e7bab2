package main

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type database interface {
	Collection(name string) collection
}

type collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (cursor, error)
}

type cursor interface {
	Close(ctx context.Context) error
	Decode(val interface{}) error
	Err() error
	Next(ctx context.Context) bool
}

// connectMongo opens a client for uri and selects the price database. The
// client is never disconnected once the ping succeeds.
func connectMongo(ctx context.Context, uri string) (database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return mongoDatabase{db: client.Database(databaseName)}, nil
}

type mongoDatabase struct {
	db *mongo.Database
}

func (d mongoDatabase) Collection(name string) collection {
	return mongoCollection{coll: d.db.Collection(name)}
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c mongoCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (cursor, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}
