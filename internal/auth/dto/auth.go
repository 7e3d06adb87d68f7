package dto

import authdomain "kanban-backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// GoogleSignInRequest carries the authorization code from the OAuth redirect.
type GoogleSignInRequest struct {
	Code string `json:"code" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *authdomain.User `json:"user"`
}

type MeResponse struct {
	User    *authdomain.User    `json:"user"`
	Profile *authdomain.Profile `json:"profile"`
}

type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	AvatarURL      *string `json:"avatar_url"`
	Timezone       *string `json:"timezone"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}
