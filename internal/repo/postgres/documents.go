package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store keeps each collection in its own table of JSONB documents keyed by
// the hex ObjectID, so ids look the same as with the MongoDB backend.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the collection tables that do not exist yet.
func (s *Store) Migrate(ctx context.Context, collections []string) error {
	for _, name := range collections {
		table := pgx.Identifier{name}.Sanitize()

		_, err := s.pool.Exec(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq        BIGSERIAL,
				id         TEXT PRIMARY KEY,
				doc        JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, table))

		if err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Collection(name string) store.Collection {
	return &Collection{
		pool:  s.pool,
		table: pgx.Identifier{name}.Sanitize(),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

type Collection struct {
	pool  *pgxpool.Pool
	table string
}

func (c *Collection) InsertOne(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	var insertedID any = primitive.NewObjectID()
	if v, ok := doc[store.IDField]; ok {
		insertedID = v
	}

	id, err := idString(insertedID)
	if err != nil {
		return store.InsertResult{}, err
	}

	body, err := json.Marshal(withoutID(doc))
	if err != nil {
		return store.InsertResult{}, err
	}

	_, err = c.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, c.table),
		id, string(body),
	)
	if err != nil {
		return store.InsertResult{}, err
	}

	return store.InsertResult{Acknowledged: true, InsertedID: insertedID}, nil
}

func (c *Collection) Find(ctx context.Context, filter store.Filter, opts store.FindOptions) ([]store.Document, error) {
	cond, args, err := where(filter, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, doc FROM %s%s ORDER BY seq ASC`, c.table, cond)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.Document, 0)
	for rows.Next() {
		var id string
		var raw []byte

		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		d, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	cond, args, err := where(filter, 1)
	if err != nil {
		return nil, err
	}

	var id string
	var raw []byte

	err = c.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, doc FROM %s%s ORDER BY seq ASC LIMIT 1`, c.table, cond),
		args...,
	).Scan(&id, &raw)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return decode(id, raw)
}

func (c *Collection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	body, err := json.Marshal(withoutID(set))
	if err != nil {
		return store.UpdateResult{}, err
	}

	cond, args, err := where(filter, 2)
	if err != nil {
		return store.UpdateResult{}, err
	}

	query := fmt.Sprintf(`
		WITH target AS (
			SELECT id, doc FROM %[1]s%[2]s ORDER BY seq ASC LIMIT 1 FOR UPDATE
		), upd AS (
			UPDATE %[1]s AS t
			SET doc = t.doc || $1::jsonb
			FROM target
			WHERE t.id = target.id AND (target.doc || $1::jsonb) <> target.doc
			RETURNING t.id
		)
		SELECT (SELECT COUNT(*) FROM target), (SELECT COUNT(*) FROM upd)`,
		c.table, cond,
	)

	res := store.UpdateResult{Acknowledged: true}

	err = c.pool.QueryRow(ctx, query, append([]any{string(body)}, args...)...).
		Scan(&res.MatchedCount, &res.ModifiedCount)
	if err != nil {
		return store.UpdateResult{}, err
	}

	return res, nil
}

func (c *Collection) FindOneAndUpdate(ctx context.Context, filter store.Filter, set store.Document) (store.Document, error) {
	body, err := json.Marshal(withoutID(set))
	if err != nil {
		return nil, err
	}

	cond, args, err := where(filter, 2)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH target AS (
			SELECT id FROM %[1]s%[2]s ORDER BY seq ASC LIMIT 1 FOR UPDATE
		)
		UPDATE %[1]s AS t
		SET doc = t.doc || $1::jsonb
		FROM target
		WHERE t.id = target.id
		RETURNING t.id, t.doc`,
		c.table, cond,
	)

	var id string
	var raw []byte

	err = c.pool.QueryRow(ctx, query, append([]any{string(body)}, args...)...).Scan(&id, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return decode(id, raw)
}

func (c *Collection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	cond, args, err := where(filter, 1)
	if err != nil {
		return store.DeleteResult{}, err
	}

	tag, err := c.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %[1]s WHERE id = (SELECT id FROM %[1]s%[2]s ORDER BY seq ASC LIMIT 1)`, c.table, cond),
		args...,
	)
	if err != nil {
		return store.DeleteResult{}, err
	}

	return store.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

func (c *Collection) CountDocuments(ctx context.Context, filter store.Filter) (int64, error) {
	cond, args, err := where(filter, 1)
	if err != nil {
		return 0, err
	}

	var n int64
	err = c.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, c.table, cond), args...).Scan(&n)

	return n, err
}

// where turns an equality filter into a WHERE clause whose placeholders start
// at $argsPosition. Field matches use JSONB containment.
func where(filter store.Filter, argsPosition int) (string, []any, error) {
	var conds []string
	var args []any

	fields := map[string]any{}
	for k, v := range filter {
		if k != store.IDField {
			fields[k] = v
			continue
		}

		id, err := idString(v)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf("id = $%d", argsPosition))
		args = append(args, id)
		argsPosition++
	}

	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf("doc @> $%d::jsonb", argsPosition))
		args = append(args, string(b))
	}

	if len(conds) == 0 {
		return "", nil, nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func idString(v any) (string, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return "", store.ErrInvalidID
	}
}

func withoutID(d store.Document) store.Document {
	out := make(store.Document, len(d))
	for k, v := range d {
		if k == store.IDField {
			continue
		}
		out[k] = v
	}
	return out
}

func decode(id string, raw []byte) (store.Document, error) {
	d := store.Document{}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		d[store.IDField] = oid
	} else {
		d[store.IDField] = id
	}
	return d, nil
}
