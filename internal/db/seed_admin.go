package db

import (
	"context"
	"errors"

	"github.com/geocoder89/reliefhub/internal/config"
	"github.com/geocoder89/reliefhub/internal/domain/user"
	"github.com/geocoder89/reliefhub/internal/security"
	"github.com/geocoder89/reliefhub/internal/store"
)

// EnsureAdminUser makes sure ADMIN_EMAIL exists with the admin role. An
// existing account is promoted, a missing one is created.
func EnsureAdminUser(ctx context.Context, users store.Collection, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists
	existing, err := users.FindOne(ctx, store.Filter{user.FieldEmail: cfg.AdminEmail})

	if err == nil {
		if user.FromDocument(existing).IsAdmin() {
			return nil
		}

		_, err = users.UpdateOne(ctx,
			store.Filter{store.IDField: existing[store.IDField]},
			store.Document{user.FieldRole: user.RoleAdmin},
		)
		return err
	}

	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	doc := user.NewDocument(cfg.AdminName, cfg.AdminEmail, hash)
	doc[user.FieldRole] = user.RoleAdmin

	_, err = users.InsertOne(ctx, doc)

	return err
}
