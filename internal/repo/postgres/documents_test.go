package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWhere(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name     string
		filter   store.Filter
		start    int
		wantCond string
		wantArgs []any
	}{
		{name: "empty", filter: nil, start: 1, wantCond: ""},
		{name: "id", filter: store.Filter{"_id": oid}, start: 1, wantCond: " WHERE id = $1", wantArgs: []any{oid.Hex()}},
		{name: "field", filter: store.Filter{"email": "a@example.com"}, start: 2, wantCond: " WHERE doc @> $2::jsonb", wantArgs: []any{`{"email":"a@example.com"}`}},
		{
			name:     "id_and_field",
			filter:   store.Filter{"_id": oid, "email": "a@example.com"},
			start:    1,
			wantCond: " WHERE id = $1 AND doc @> $2::jsonb",
			wantArgs: []any{oid.Hex(), `{"email":"a@example.com"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, args, err := where(tt.filter, tt.start)
			if err != nil {
				t.Fatalf("where: %v", err)
			}
			if cond != tt.wantCond {
				t.Fatalf("cond: got %q, want %q", cond, tt.wantCond)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args: got %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Fatalf("arg %d: got %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestWhereRejectsUnknownIDType(t *testing.T) {
	if _, _, err := where(store.Filter{"_id": 42}, 1); !errors.Is(err, store.ErrInvalidID) {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeRestoresObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	d, err := decode(oid.Hex(), []byte(`{"title":"rice","quantity":3}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d["_id"] != oid {
		t.Fatalf("_id: got %v (%T)", d["_id"], d["_id"])
	}
	if d["quantity"] != 3.0 {
		t.Fatalf("quantity: got %v", d["quantity"])
	}
}

// Runs against a live database when TEST_DB_DSN is set.
func TestStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	s := NewStore(pool)
	name := "supplies_test_" + primitive.NewObjectID().Hex()
	if err := s.Migrate(ctx, []string{name}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DROP TABLE IF EXISTS "`+name+`"`)
	})

	c := s.Collection(name)

	ins, err := c.InsertOne(ctx, store.Document{"title": "rice", "email": "a@example.com"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	f, _ := store.IDFilter(ins.InsertedID.(primitive.ObjectID).Hex())

	upd, err := c.UpdateOne(ctx, f, store.Document{"title": "water"})
	if err != nil || upd.MatchedCount != 1 || upd.ModifiedCount != 1 {
		t.Fatalf("update: %+v %v", upd, err)
	}
	upd, _ = c.UpdateOne(ctx, f, store.Document{"title": "water"})
	if upd.MatchedCount != 1 || upd.ModifiedCount != 0 {
		t.Fatalf("no-op update: %+v", upd)
	}

	n, err := c.CountDocuments(ctx, store.Filter{"email": "a@example.com"})
	if err != nil || n != 1 {
		t.Fatalf("count: %d %v", n, err)
	}

	del, _ := c.DeleteOne(ctx, f)
	if del.DeletedCount != 1 {
		t.Fatalf("delete: %+v", del)
	}
	del, _ = c.DeleteOne(ctx, f)
	if del.DeletedCount != 0 {
		t.Fatalf("repeat delete: %+v", del)
	}
}
