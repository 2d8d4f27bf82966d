package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names used by the API.
const (
	Users        = "users"
	Supplies     = "supplies"
	Donations    = "donations"
	Communities  = "communities"
	Testimonials = "testimonials"
	Volunteers   = "volunteers"
)

// AllCollections lists every collection the API touches.
var AllCollections = []string{Users, Supplies, Donations, Communities, Testimonials, Volunteers}

// IDField is the primary key of every document.
const IDField = "_id"

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

// Document is a stored record. Bodies are kept verbatim, so there is no
// schema beyond the fields individual handlers read.
type Document map[string]any

// Filter is an equality match on top-level fields. An "_id" entry must hold
// a primitive.ObjectID, see IDFilter.
type Filter map[string]any

// IDFilter builds a filter on the document id from its hex form.
func IDFilter(hexID string) (Filter, error) {
	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return Filter{IDField: oid}, nil
}

// The result types mirror what the MongoDB driver reports, which is what the
// web client has always received in the "data" field.

type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// FindOptions narrows a Find. A zero Limit means no limit.
type FindOptions struct {
	Limit int64
}

type Collection interface {
	InsertOne(ctx context.Context, doc Document) (InsertResult, error)
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]Document, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, filter Filter) (Document, error)
	// UpdateOne applies set as a field-level merge ($set) to the first match.
	UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error)
	// FindOneAndUpdate is UpdateOne returning the updated document, or ErrNotFound.
	FindOneAndUpdate(ctx context.Context, filter Filter, set Document) (Document, error)
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)
	CountDocuments(ctx context.Context, filter Filter) (int64, error)
}

type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
