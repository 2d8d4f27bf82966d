package store

import (
	"context"
	"errors"
)

// Observer times a logical store operation. observability.Prom satisfies it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

// Observe wraps every collection call of s with obs, labelled "<collection>.<op>".
func Observe(s Store, obs Observer) Store {
	if obs == nil {
		return s
	}
	return &observedStore{Store: s, obs: obs}
}

type observedStore struct {
	Store
	obs Observer
}

func (s *observedStore) Collection(name string) Collection {
	return &observedCollection{next: s.Store.Collection(name), name: name, obs: s.obs}
}

type observedCollection struct {
	next Collection
	name string
	obs  Observer
}

func (c *observedCollection) op(name string) string {
	return c.name + "." + name
}

func (c *observedCollection) InsertOne(ctx context.Context, doc Document) (res InsertResult, err error) {
	err = c.obs.ObserveDB(c.op("insert_one"), func() error {
		res, err = c.next.InsertOne(ctx, doc)
		return err
	})
	return res, err
}

func (c *observedCollection) Find(ctx context.Context, filter Filter, opts FindOptions) (docs []Document, err error) {
	err = c.obs.ObserveDB(c.op("find"), func() error {
		docs, err = c.next.Find(ctx, filter, opts)
		return err
	})
	return docs, err
}

func (c *observedCollection) FindOne(ctx context.Context, filter Filter) (doc Document, err error) {
	err = c.obs.ObserveDB(c.op("find_one"), func() error {
		doc, err = c.next.FindOne(ctx, filter)
		// a miss is an answer, not a failed query
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err == nil && doc == nil {
		return nil, ErrNotFound
	}
	return doc, err
}

func (c *observedCollection) UpdateOne(ctx context.Context, filter Filter, set Document) (res UpdateResult, err error) {
	err = c.obs.ObserveDB(c.op("update_one"), func() error {
		res, err = c.next.UpdateOne(ctx, filter, set)
		return err
	})
	return res, err
}

func (c *observedCollection) FindOneAndUpdate(ctx context.Context, filter Filter, set Document) (doc Document, err error) {
	err = c.obs.ObserveDB(c.op("find_one_and_update"), func() error {
		doc, err = c.next.FindOneAndUpdate(ctx, filter, set)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err == nil && doc == nil {
		return nil, ErrNotFound
	}
	return doc, err
}

func (c *observedCollection) DeleteOne(ctx context.Context, filter Filter) (res DeleteResult, err error) {
	err = c.obs.ObserveDB(c.op("delete_one"), func() error {
		res, err = c.next.DeleteOne(ctx, filter)
		return err
	})
	return res, err
}

func (c *observedCollection) CountDocuments(ctx context.Context, filter Filter) (n int64, err error) {
	err = c.obs.ObserveDB(c.op("count_documents"), func() error {
		n, err = c.next.CountDocuments(ctx, filter)
		return err
	})
	return n, err
}
