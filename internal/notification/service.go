package notification

import (
	"context"
	"log"
	"time"

	authdomain "kanban-backend/internal/auth/domain"
	"kanban-backend/internal/notification/domain"
	"kanban-backend/internal/notification/repository"
	prefdomain "kanban-backend/internal/preference/domain"
	"kanban-backend/pkg/apperror"
	"kanban-backend/pkg/fcm"
	"kanban-backend/pkg/realtime"

	"gorm.io/datatypes"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// DeviceTokens is satisfied by the auth device token repository.
type DeviceTokens interface {
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error)
	DeleteToken(ctx context.Context, token string) error
}

// Profiles is satisfied by the auth profile repository.
type Profiles interface {
	FindByUserID(ctx context.Context, userID string) (*authdomain.Profile, error)
}

// SettingsReader is satisfied by the preference usecase.
type SettingsReader interface {
	NotificationSettings(ctx context.Context, userID string) (prefdomain.NotificationSettings, error)
}

// PushSender is satisfied by *fcm.Client.
type PushSender interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

// ChatSender is satisfied by *telegram.Sender.
type ChatSender interface {
	Send(ctx context.Context, chatID int64, title, body string) error
}

// LiveChannel is satisfied by *realtime.Hub.
type LiveChannel interface {
	SendToUser(userID string, msg realtime.Message)
}

// Channels are the optional delivery targets besides the in-app list. Leave
// a field nil when the integration is not configured.
type Channels struct {
	Push PushSender
	Chat ChatSender
	Live LiveChannel
}

// Service stores in-app notifications and fans them out to the user's
// devices, Telegram chat and open WebSocket connections.
type Service struct {
	repo     repository.NotificationRepository
	devices  DeviceTokens
	profiles Profiles
	settings SettingsReader
	channels Channels
}

func NewService(repo repository.NotificationRepository, devices DeviceTokens, profiles Profiles, settings SettingsReader, channels Channels) *Service {
	return &Service{
		repo:     repo,
		devices:  devices,
		profiles: profiles,
		settings: settings,
		channels: channels,
	}
}

// Settings returns the user's notification settings, falling back to the
// defaults when they cannot be read.
func (s *Service) Settings(ctx context.Context, userID string) prefdomain.NotificationSettings {
	if s.settings == nil {
		return prefdomain.DefaultNotificationSettings()
	}
	settings, err := s.settings.NotificationSettings(ctx, userID)
	if err != nil {
		log.Printf("[Notification] Error reading settings for user %s, using defaults: %v", userID, err)
		return prefdomain.DefaultNotificationSettings()
	}
	return settings
}

// Location returns the timezone from the user's profile, UTC when it is
// unset or cannot be loaded.
func (s *Service) Location(ctx context.Context, userID string) *time.Location {
	if s.profiles == nil {
		return time.UTC
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		log.Printf("[Notification] Error reading profile for user %s: %v", userID, err)
		return time.UTC
	}
	if profile == nil || profile.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		log.Printf("[Notification] Unknown timezone %q for user %s: %v", profile.Timezone, userID, err)
		return time.UTC
	}
	return loc
}

// Notify delivers msg to the user. Only the in-app write can fail the call;
// channel failures are logged.
func (s *Service) Notify(ctx context.Context, userID string, msg domain.Message) error {
	settings := s.Settings(ctx, userID)
	if !settings.Enabled {
		log.Printf("[Notification] Notifications disabled for user %s, dropping %q", userID, msg.Title)
		return nil
	}

	n := &domain.Notification{
		UserID:             userID,
		Title:              msg.Title,
		Body:               msg.Body,
		Tag:                msg.Tag,
		Link:               msg.Link,
		RequireInteraction: msg.RequireInteraction,
	}
	if len(msg.Data) > 0 {
		n.Data = datatypes.JSONMap{}
		for k, v := range msg.Data {
			n.Data[k] = v
		}
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.channels.Live != nil {
		s.channels.Live.SendToUser(userID, realtime.Message{Type: "notification", Data: n})
	}
	if settings.Push && s.channels.Push != nil {
		s.push(ctx, userID, msg)
	}
	if settings.Telegram && s.channels.Chat != nil {
		s.chat(ctx, userID, msg)
	}
	return nil
}

func (s *Service) push(ctx context.Context, userID string, msg domain.Message) {
	tokens, err := s.devices.GetTokensByUserID(ctx, userID)
	if err != nil {
		log.Printf("[FCM] Error getting FCM tokens for user %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failedTokens, err := s.channels.Push.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title:              msg.Title,
		Body:               msg.Body,
		Tag:                msg.Tag,
		RequireInteraction: msg.RequireInteraction,
		Data:               msg.Data,
		Link:               msg.Link,
	})
	if err != nil {
		log.Printf("[FCM] Error sending notification to user %s: %v", userID, err)
		return
	}

	// Cleanup failed tokens
	for _, token := range failedTokens {
		if err := s.devices.DeleteToken(ctx, token); err != nil {
			log.Printf("[FCM] Error deleting failed token: %v", err)
		}
	}
}

func (s *Service) chat(ctx context.Context, userID string, msg domain.Message) {
	if s.profiles == nil {
		return
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		log.Printf("[Telegram] Error loading profile for user %s: %v", userID, err)
		return
	}
	if profile == nil || profile.TelegramChatID == 0 {
		return
	}
	if err := s.channels.Chat.Send(ctx, profile.TelegramChatID, msg.Title, msg.Body); err != nil {
		log.Printf("[Telegram] Error sending to user %s: %v", userID, err)
	}
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*domain.Notification, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	found, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("notification not found")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
