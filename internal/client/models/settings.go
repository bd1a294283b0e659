package models

// Settings is the small free-form local preferences blob. It is explicitly not
// synchronized.
type Settings struct {
	ReminderEnabled bool   `json:"reminder_enabled"`
	ReminderTime    string `json:"reminder_time"` // "HH:mm"
	Theme           string `json:"theme"`         // light | dark | system
}

// DefaultSettings returns the preferences a fresh device starts with.
func DefaultSettings() Settings {
	return Settings{
		ReminderEnabled: false,
		ReminderTime:    "21:00",
		Theme:           "system",
	}
}
