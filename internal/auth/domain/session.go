package domain

import "time"

type SessionEventType string

const (
	SessionSignedUp       SessionEventType = "signed_up"
	SessionSignedIn       SessionEventType = "signed_in"
	SessionTokenRefreshed SessionEventType = "token_refreshed"
	SessionSignedOut      SessionEventType = "signed_out"
)

type SessionEvent struct {
	Type SessionEventType
	User *User
	At   time.Time
}
