package usecase

import (
	"context"

	authdomain "kanban-backend/internal/auth/domain"
	authdto "kanban-backend/internal/auth/dto"
)

// AuthUsecase defines sign-up, sign-in and session handling.
type AuthUsecase interface {
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	// GoogleAuthURL returns the consent page URL for the OAuth redirect flow.
	GoogleAuthURL(state string) string
	GoogleSignIn(ctx context.Context, code string) (*authdto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(ctx context.Context, token string) (*authdomain.User, error)

	Me(ctx context.Context, userID string) (*authdto.MeResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *authdto.UpdateProfileRequest) (*authdomain.Profile, error)
	RegisterDeviceToken(ctx context.Context, userID string, req *authdto.RegisterDeviceRequest) error
	UnregisterDeviceToken(ctx context.Context, userID, token string) error
}
