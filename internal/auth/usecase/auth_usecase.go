package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	authdomain "kanban-backend/internal/auth/domain"
	authdto "kanban-backend/internal/auth/dto"
	"kanban-backend/internal/auth/repository"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired token")
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo    repository.UserRepository
	deviceRepo  repository.DeviceTokenRepository
	profileRepo repository.ProfileRepository
	sessions    *SessionBroker
	config      *config.Config
	oauth       *oauth2.Config
	userInfoURL string
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, deviceRepo repository.DeviceTokenRepository, profileRepo repository.ProfileRepository, sessions *SessionBroker, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		deviceRepo:  deviceRepo,
		profileRepo: profileRepo,
		sessions:    sessions,
		config:      cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Provider != authdomain.ProviderEmail {
		return nil, apperror.Validation("please use Google Sign-In for this account")
	}

	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return u.startSession(ctx, user, authdomain.SessionSignedIn)
}

func (u *authUsecase) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, apperror.Conflict("email already registered")
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     strings.TrimSpace(req.Name),
		Provider: authdomain.ProviderEmail,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.startSession(ctx, user, authdomain.SessionSignedUp)
}

// googleUserInfo is the subset of the OpenID userinfo response we use.
type googleUserInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
	Sub           string `json:"sub"`
}

func (u *authUsecase) GoogleAuthURL(state string) string {
	return u.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (u *authUsecase) GoogleSignIn(ctx context.Context, code string) (*authdto.TokenResponse, error) {
	if u.oauth.ClientID == "" {
		return nil, apperror.Validation("google sign-in is not configured")
	}

	token, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Unauthorized("failed to exchange google authorization code")
	}

	info, err := u.fetchGoogleUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.EmailVerified {
		return nil, apperror.Unauthorized("google email is not verified")
	}

	user, err := u.userRepo.FindByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}

	eventType := authdomain.SessionSignedIn
	if user == nil {
		user = &authdomain.User{
			Email:     info.Email,
			Name:      info.Name,
			AvatarURL: info.Picture,
			Provider:  authdomain.ProviderGoogle,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		eventType = authdomain.SessionSignedUp
	} else {
		user.Name = info.Name
		user.AvatarURL = info.Picture
		if err := u.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return u.startSession(ctx, user, eventType)
}

func (u *authUsecase) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := u.oauth.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch google user info: status %d, body: %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode google user info: %w", err)
	}
	return &info, nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parseToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	storedToken, err := u.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken == nil || storedToken.ExpiresAt.Before(time.Now()) {
		return nil, apperror.Unauthorized("refresh token expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, apperror.Unauthorized("user not found")
	}

	// Rotate: the presented refresh token is single use.
	if err := u.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return u.startSession(ctx, user, authdomain.SessionTokenRefreshed)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	stored, err := u.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := u.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return err
	}
	if stored != nil {
		if user, err := u.userRepo.FindByID(ctx, stored.UserID); err == nil && user != nil {
			u.sessions.Publish(ctx, authdomain.SessionEvent{Type: authdomain.SessionSignedOut, User: user})
		}
	}
	return nil
}

func (u *authUsecase) startSession(ctx context.Context, user *authdomain.User, eventType authdomain.SessionEventType) (*authdto.TokenResponse, error) {
	resp, err := u.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	u.sessions.Publish(ctx, authdomain.SessionEvent{Type: eventType, User: user})
	return resp, nil
}

func (u *authUsecase) generateTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenResponse, error) {
	now := time.Now()

	accessToken, err := u.sign(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"type":    "access",
		"exp":     now.Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.sign(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"type":     "refresh",
		"exp":      now.Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(u.config.JWTRefreshExpiry).UTC(),
	}
	if err := u.userRepo.SaveRefreshToken(ctx, refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (u *authUsecase) ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error) {
	claims, err := u.parseToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, apperror.Unauthorized("user not found")
	}

	return user, nil
}

func (u *authUsecase) Me(ctx context.Context, userID string) (*authdto.MeResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	profile, err := u.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &authdto.MeResponse{User: user, Profile: profile}, nil
}

func (u *authUsecase) UpdateProfile(ctx context.Context, userID string, req *authdto.UpdateProfileRequest) (*authdomain.Profile, error) {
	profile, err := u.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &authdomain.Profile{UserID: userID}
		if err := u.profileRepo.CreateIfMissing(ctx, profile); err != nil {
			return nil, err
		}
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, apperror.Validation("unknown timezone " + *req.Timezone)
		}
		profile.Timezone = *req.Timezone
	}
	if req.TelegramChatID != nil {
		profile.TelegramChatID = *req.TelegramChatID
	}

	if err := u.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *authUsecase) RegisterDeviceToken(ctx context.Context, userID string, req *authdto.RegisterDeviceRequest) error {
	return u.deviceRepo.SaveToken(ctx, userID, req.Token, req.DeviceInfo)
}

func (u *authUsecase) UnregisterDeviceToken(ctx context.Context, userID, token string) error {
	return u.deviceRepo.DeleteUserToken(ctx, userID, token)
}
