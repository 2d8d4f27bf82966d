package db

import (
	"context"
	"fmt"

	"github.com/geocoder89/reliefhub/internal/config"
	"github.com/geocoder89/reliefhub/internal/repo/memory"
	"github.com/geocoder89/reliefhub/internal/repo/mongodb"
	"github.com/geocoder89/reliefhub/internal/repo/postgres"
	"github.com/geocoder89/reliefhub/internal/store"
)

// OpenStore connects the document store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewStore(), nil

	case config.StorePostgres:
		pool, err := NewPostgresPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}

		s := postgres.NewStore(pool)
		if err := s.Migrate(ctx, store.AllCollections); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil

	case config.StoreMongo:
		client, err := NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		return mongodb.NewStore(client, cfg.MongoDatabase), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
