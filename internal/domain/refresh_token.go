package domain

import (
	"context"
	"time"
)

// RefreshToken represents a stored refresh token for session management.
// Mobile clients keep long-lived sessions; the raw token never touches the
// database, only its hash.
type RefreshToken struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	TokenHash  string    `bson:"token_hash" json:"-"` // SHA256 hash, never expose
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	DeviceName string    `bson:"device_name" json:"device_name"` // e.g. "iPhone 15 Pro"
	Platform   string    `bson:"platform" json:"platform"`       // "ios", "watchos"
	Revoked    bool      `bson:"revoked" json:"revoked"`
}

// IsExpired checks if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// IsValid checks if the token is valid (not expired and not revoked)
func (r *RefreshToken) IsValid() bool {
	return !r.IsExpired() && !r.Revoked
}

// RefreshTokenRepository defines the interface for refresh token storage
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}
