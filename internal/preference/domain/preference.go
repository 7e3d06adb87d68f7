package domain

// Key names one piece of per-user feature state.
type Key string

const (
	KeyCurrentView          Key = "current_view"
	KeyQuickNotes           Key = "quick_notes"
	KeyPomodoro             Key = "pomodoro"
	KeyBoardBackground      Key = "board_background"
	KeyEmailDigest          Key = "email_digest"
	KeyNotificationSettings Key = "notification_settings"
	KeyTaskReminders        Key = "task_reminders"
)

var allKeys = []Key{
	KeyCurrentView,
	KeyQuickNotes,
	KeyPomodoro,
	KeyBoardBackground,
	KeyEmailDigest,
	KeyNotificationSettings,
	KeyTaskReminders,
}

func AllKeys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

func (k Key) Valid() bool {
	for _, known := range allKeys {
		if k == known {
			return true
		}
	}
	return false
}

// NotificationSettings control which reminders reach a user and over which
// channels. In-app notifications are always stored while Enabled is set.
type NotificationSettings struct {
	Enabled  bool            `json:"enabled"`
	Push     bool            `json:"push"`
	Telegram bool            `json:"telegram"`
	Email    bool            `json:"email"`
	Buckets  map[string]bool `json:"buckets,omitempty"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Enabled: true, Push: true, Telegram: true}
}

// BucketEnabled reports whether reminders of the bucket should be sent.
// Buckets missing from the map are on.
func (s NotificationSettings) BucketEnabled(bucket string) bool {
	if !s.Enabled {
		return false
	}
	on, ok := s.Buckets[bucket]
	return !ok || on
}

// DigestSettings configure the daily e-mail summary.
type DigestSettings struct {
	Enabled         bool `json:"enabled"`
	IncludeOverdue  bool `json:"include_overdue"`
	IncludeDueToday bool `json:"include_due_today"`
}

func DefaultDigestSettings() DigestSettings {
	return DigestSettings{IncludeOverdue: true, IncludeDueToday: true}
}
