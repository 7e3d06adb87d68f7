package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app notification. The fields mirror what a browser
// Notification is built from so the client can replay it.
type Notification struct {
	ID                 string            `json:"id" gorm:"primaryKey"`
	UserID             string            `json:"user_id" gorm:"index;not null"`
	Title              string            `json:"title" gorm:"not null"`
	Body               string            `json:"body"`
	Tag                string            `json:"tag,omitempty" gorm:"index"`
	Link               string            `json:"link,omitempty"`
	Data               datatypes.JSONMap `json:"data,omitempty"`
	RequireInteraction bool              `json:"require_interaction"`
	Read               bool              `json:"read" gorm:"column:is_read;default:false;index"`
	CreatedAt          time.Time         `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Message is what producers hand to the dispatcher.
type Message struct {
	Title              string
	Body               string
	Tag                string
	Link               string
	RequireInteraction bool
	Data               map[string]string
}
