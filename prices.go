package main

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Price is a document from the prices collection, passed through as stored.
type Price = bson.M

type connectionGetter interface {
	GetConnection(ctx context.Context) (database, error)
}

// retrieveAll reads every document in the prices collection in cursor order.
func retrieveAll(ctx context.Context, conn connectionGetter) ([]Price, error) {
	db, err := conn.GetConnection(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := db.Collection(collectionName).Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "find prices")
	}
	defer cur.Close(ctx)

	prices := make([]Price, 0)
	for cur.Next(ctx) {
		var doc Price
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode price")
		}
		prices = append(prices, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "read prices")
	}
	return prices, nil
}
