package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/geocoder89/reliefhub/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store keeps collections in process memory. It backs tests and
// STORE_DRIVER=memory local runs.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]*Collection),
	}
}

func (s *Store) Collection(name string) store.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}

// Collection holds documents in insertion order.
type Collection struct {
	mu   sync.RWMutex
	docs []store.Document
}

func (c *Collection) InsertOne(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return store.InsertResult{}, err
	}

	d := copyDocument(doc)
	id, ok := d[store.IDField]
	if !ok {
		id = primitive.NewObjectID()
		d[store.IDField] = id
	}

	c.mu.Lock()
	c.docs = append(c.docs, d)
	c.mu.Unlock()

	return store.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *Collection) Find(ctx context.Context, filter store.Filter, opts store.FindOptions) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]store.Document, 0)
	for _, d := range c.docs {
		if opts.Limit > 0 && int64(len(out)) >= opts.Limit {
			break
		}
		if matches(d, filter) {
			out = append(out, copyDocument(d))
		}
	}
	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(filter)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	return copyDocument(c.docs[i]), nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return store.UpdateResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res := store.UpdateResult{Acknowledged: true}

	i := c.indexOf(filter)
	if i < 0 {
		return res, nil
	}

	res.MatchedCount = 1
	if apply(c.docs[i], set) {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, filter store.Filter, set store.Document) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(filter)
	if i < 0 {
		return nil, store.ErrNotFound
	}

	apply(c.docs[i], set)
	return copyDocument(c.docs[i]), nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return store.DeleteResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res := store.DeleteResult{Acknowledged: true}

	i := c.indexOf(filter)
	if i < 0 {
		return res, nil
	}

	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	res.DeletedCount = 1
	return res, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter store.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

// caller holds c.mu
func (c *Collection) indexOf(filter store.Filter) int {
	for i, d := range c.docs {
		if matches(d, filter) {
			return i
		}
	}
	return -1
}

func matches(d store.Document, filter store.Filter) bool {
	for k, want := range filter {
		got, ok := d[k]
		if !ok {
			// a missing field matches an explicit null, like $eq: null
			if want == nil {
				continue
			}
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// apply merges set into d and reports whether anything changed.
func apply(d store.Document, set store.Document) bool {
	changed := false
	for k, v := range set {
		if k == store.IDField {
			continue
		}
		old, ok := d[k]
		if !ok || !reflect.DeepEqual(old, v) {
			changed = true
		}
		d[k] = copyValue(v)
	}
	return changed
}

func copyDocument(d store.Document) store.Document {
	out := make(store.Document, len(d))
	for k, v := range d {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = copyValue(vv)
		}
		return m
	case store.Document:
		return copyDocument(t)
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = copyValue(vv)
		}
		return s
	default:
		return v
	}
}
