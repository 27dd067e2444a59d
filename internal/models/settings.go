package models

import "time"

// QuietHoursWindow is a local time-of-day window during which notifications
// are deferred. Start > End means the window spans midnight.
type QuietHoursWindow struct {
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`   // HH:MM
}

// Settings is a point-in-time snapshot of the notification settings. It is
// passed into the scheduler as a parameter so the quiet-hours decision stays a
// pure function of its inputs.
type Settings struct {
	QuietHoursEnabled bool             `json:"quiet_hours_enabled"`
	QuietHours        QuietHoursWindow `json:"quiet_hours"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NotificationRequest describes one outstanding platform notification.
// An identifier determines at most one outstanding request: scheduling with
// an existing identifier replaces the old one.
type NotificationRequest struct {
	Identifier string    `json:"identifier"`
	FiringAt   time.Time `json:"firing_at"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Priority   int       `json:"priority"`
}
