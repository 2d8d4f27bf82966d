package actorctx

import (
	"context"

	"github.com/geocoder89/reliefhub/internal/auth"
)

type ctxKey string

const (
	keyClaims    ctxKey = "claims"
	keyRequestID ctxKey = "request_id"
)

func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	v, ok := ctx.Value(keyClaims).(auth.Claims)

	return v, ok && v != nil
}

// EmailFrom returns the verified email of the caller, if any.
func EmailFrom(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return "", false
	}

	email := claims.Email()
	return email, email != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)

	return v, ok && v != ""
}
