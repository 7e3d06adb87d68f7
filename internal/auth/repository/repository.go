package repository

import (
	"context"

	authdomain "kanban-backend/internal/auth/domain"
)

// UserRepository stores accounts and their refresh tokens.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*authdomain.User, error)
	Update(ctx context.Context, user *authdomain.User) error
	SaveRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

// DeviceTokenRepository stores FCM registrations.
type DeviceTokenRepository interface {
	SaveToken(ctx context.Context, userID, token, deviceInfo string) error
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error)
	DeleteToken(ctx context.Context, token string) error
	DeleteUserToken(ctx context.Context, userID, token string) error
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*authdomain.Profile, error)
	// CreateIfMissing inserts profile unless a row for the user already exists.
	CreateIfMissing(ctx context.Context, profile *authdomain.Profile) error
	Update(ctx context.Context, profile *authdomain.Profile) error
}
