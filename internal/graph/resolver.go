// Package graph exposes the GraphQL surface: one resolver per field,
// each a thin call into the auth service or the data-access layer.
package graph

import (
	"context"

	"suggestboard/internal/app"
	"suggestboard/internal/cache"
	"suggestboard/internal/model"
	"suggestboard/internal/pkg/jwtutil"
	"suggestboard/internal/pubsub"
	"suggestboard/internal/repository"
)

type UserStore interface {
	FindOne(ctx context.Context, f repository.UserFilter) (*model.User, error)
	FindAll(ctx context.Context, f repository.UserFilter) ([]model.User, error)
	Update(ctx context.Context, changes repository.UserChanges, f repository.UserFilter) (int64, error)
	Destroy(ctx context.Context, f repository.UserFilter) (int64, error)
}

type BoardStore interface {
	Create(ctx context.Context, board *model.Board) error
	FindAll(ctx context.Context, f repository.BoardFilter) ([]model.Board, error)
}

type SuggestionStore interface {
	Create(ctx context.Context, suggestion *model.Suggestion) error
	FindAll(ctx context.Context, f repository.SuggestionFilter) ([]model.Suggestion, error)
}

// Resolver is the root resolver. It holds every collaborator the field
// resolvers reach for. UserCache may be nil; listings then always hit the
// database.
type Resolver struct {
	Auth        *app.AuthService
	Users       UserStore
	Boards      BoardStore
	Suggestions SuggestionStore
	Hub         *pubsub.Hub
	UserCache   *cache.UserListCache
}

type claimsKey struct{}

// WithClaims attaches a verified identity to the request context. The
// transport layer calls this after a successful token verification; an
// absent claim means the caller is anonymous.
func WithClaims(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the caller identity or nil for anonymous requests.
func ClaimsFrom(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*jwtutil.Claims)
	return claims
}
