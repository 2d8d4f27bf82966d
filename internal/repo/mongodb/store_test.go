package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/reliefhub/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestToBSONNeverNil(t *testing.T) {
	if got := toBSON(nil); got == nil {
		t.Fatalf("nil filter must become an empty document")
	}
}

func TestSetDocDropsID(t *testing.T) {
	got := setDoc(store.Document{"_id": "x", "title": "rice"})

	if _, ok := got["_id"]; ok {
		t.Fatalf("_id must not be part of $set: %v", got)
	}
	if got["title"] != "rice" {
		t.Fatalf("got %v", got)
	}
}

// Runs against a live server when TEST_MONGODB_URI is set.
func TestStoreAgainstMongo(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	dbName := "reliefhub_test_" + primitive.NewObjectID().Hex()
	s := NewStore(client, dbName)
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = s.Close(context.Background())
	})

	c := s.Collection(store.Supplies)

	ins, err := c.InsertOne(ctx, store.Document{"title": "rice"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	oid := ins.InsertedID.(primitive.ObjectID)
	f, _ := store.IDFilter(oid.Hex())

	updated, err := c.FindOneAndUpdate(ctx, f, store.Document{"title": "water"})
	if err != nil || updated["title"] != "water" {
		t.Fatalf("find one and update: %v %v", updated, err)
	}

	del, err := c.DeleteOne(ctx, f)
	if err != nil || del.DeletedCount != 1 {
		t.Fatalf("delete: %+v %v", del, err)
	}
	del, err = c.DeleteOne(ctx, f)
	if err != nil || del.DeletedCount != 0 {
		t.Fatalf("repeat delete: %+v %v", del, err)
	}
}
