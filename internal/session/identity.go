package session

import (
	"context"

	"github.com/google/uuid"

	"researchnett/internal/eligibility"
)

type identityKey struct{}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	TokenID string    `json:"-"`
}

// Username is the local part of the email, shown as a display fallback.
func (i *Identity) Username() string {
	return eligibility.Username(i.Email)
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
