package models

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

type Repeat string

const (
	RepeatNone    Repeat = ""
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
	RepeatCustom  Repeat = "custom"
)

// CustomConfig describes a custom weekly cadence: fire on the selected
// weekdays (Sunday=0), then wait IntervalWeeks before the next round.
type CustomConfig struct {
	Days          []int `json:"days"`
	IntervalWeeks int   `json:"interval_weeks"`
}

// Item is a user-created task, bill, reminder or note. For a recurring item
// DueAt/RemindAt are template times: their time-of-day is reused for every
// occurrence while the calendar date is recomputed per occurrence.
type Item struct {
	ID             string        `json:"item_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         Status        `json:"status"`
	DueAt          *time.Time    `json:"due_at"`
	RemindAt       *time.Time    `json:"remind_at"`
	Repeat         Repeat        `json:"repeat"`
	Custom         *CustomConfig `json:"custom,omitempty"`
	SkippedDates   DateSet       `json:"skipped_dates"`
	CompletedDates DateSet       `json:"completed_dates"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsRecurring returns true if this item has a recurrence rule.
func (i *Item) IsRecurring() bool {
	return i.Repeat != RepeatNone
}

// TemplateTime is the anchor the recurrence walk starts from.
func (i *Item) TemplateTime() *time.Time {
	if i.RemindAt != nil {
		return i.RemindAt
	}
	return i.DueAt
}

// DisplayTime is the instant a one-time item is shown at.
func (i *Item) DisplayTime() *time.Time {
	if i.DueAt != nil {
		return i.DueAt
	}
	return i.RemindAt
}
