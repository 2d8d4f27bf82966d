package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/reliefhub/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

func (s *Store) Collection(name string) store.Collection {
	return &Collection{coll: s.db.Collection(name)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type Collection struct {
	coll *mongo.Collection
}

func (c *Collection) InsertOne(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	d := bson.M{}
	for k, v := range doc {
		d[k] = v
	}
	if _, ok := d[store.IDField]; !ok {
		d[store.IDField] = primitive.NewObjectID()
	}

	res, err := c.coll.InsertOne(ctx, d)
	if err != nil {
		return store.InsertResult{}, err
	}

	return store.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (c *Collection) Find(ctx context.Context, filter store.Filter, opts store.FindOptions) ([]store.Document, error) {
	findOpts := options.Find()
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := c.coll.Find(ctx, toBSON(filter), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]store.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Document(r))
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	var doc bson.M

	err := c.coll.FindOne(ctx, toBSON(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return store.Document(doc), nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, toBSON(filter), bson.M{"$set": setDoc(set)})
	if err != nil {
		return store.UpdateResult{}, err
	}

	return store.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, filter store.Filter, set store.Document) (store.Document, error) {
	var doc bson.M

	err := c.coll.FindOneAndUpdate(
		ctx,
		toBSON(filter),
		bson.M{"$set": setDoc(set)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return store.Document(doc), nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return store.DeleteResult{}, err
	}

	return store.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter store.Filter) (int64, error) {
	return c.coll.CountDocuments(ctx, toBSON(filter))
}

// the driver rejects a nil filter document
func toBSON(f store.Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		out[k] = v
	}
	return out
}

// $set may not touch the immutable _id
func setDoc(set store.Document) bson.M {
	out := bson.M{}
	for k, v := range set {
		if k == store.IDField {
			continue
		}
		out[k] = v
	}
	return out
}
