package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"researchnett/internal/auth"
	"researchnett/internal/cache"
	"researchnett/internal/logger"
)

const (
	adminFlagKeyPrefix = "admin_flag:"
	adminFlagTTL       = time.Minute
)

// AdminLookup reports admin membership.
type AdminLookup interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Resolver turns verified token claims into an Identity.
type Resolver struct {
	admins AdminLookup
	cache  *cache.Client
}

// NewResolver creates a resolver. The admin flag is cached in redis briefly.
func NewResolver(admins AdminLookup, c *cache.Client) *Resolver {
	return &Resolver{admins: admins, cache: c}
}

// Resolve builds the caller's identity from access-token claims.
func (r *Resolver) Resolve(ctx context.Context, claims *auth.Claims) (*Identity, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	isAdmin, err := r.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:  userID,
		Email:   claims.Email,
		IsAdmin: isAdmin,
		TokenID: claims.ID,
	}, nil
}

func (r *Resolver) isAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := adminFlagKeyPrefix + userID.String()
	if cached, _ := r.cache.Get(ctx, key); cached != nil {
		return string(cached) == "1", nil
	}

	isAdmin, err := r.admins.IsAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check admin membership: %w", err)
	}

	flag := []byte("0")
	if isAdmin {
		flag = []byte("1")
	}
	_ = r.cache.Set(ctx, key, flag, adminFlagTTL)
	return isAdmin, nil
}

// Invalidate drops the cached admin flag for userID.
func (r *Resolver) Invalidate(ctx context.Context, userID uuid.UUID) {
	_ = r.cache.Delete(ctx, adminFlagKeyPrefix+userID.String())
}

// Watch subscribes to hub and drops cached state whenever a user's session
// changes. The returned channel closes once the subscription has ended.
func (r *Resolver) Watch(hub *Hub) <-chan struct{} {
	events, _ := hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			r.Invalidate(context.Background(), ev.UserID)
			logger.Debug(context.Background(), "session event",
				zap.String("kind", string(ev.Kind)),
				zap.String("user_id", ev.UserID.String()),
			)
		}
	}()
	return done
}
