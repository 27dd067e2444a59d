package models

import "time"

// Occurrence is one concrete instance of an item on one date. Occurrences are
// derived on demand for a bounded window and never persisted.
type Occurrence struct {
	ItemID      string    `json:"item_id"`
	Title       string    `json:"title"`
	DisplayDate time.Time `json:"display_date"`
	IsCompleted bool      `json:"is_completed"`
	IsSkipped   bool      `json:"is_skipped"`
	IsVirtual   bool      `json:"is_virtual"`
	TimePassed  bool      `json:"time_passed"`
}

// Pending reports whether the occurrence still needs attention.
func (o Occurrence) Pending() bool {
	return !o.IsCompleted && !o.IsSkipped
}

// DateKey returns the occurrence's marker key in the given location.
func (o Occurrence) DateKey(loc *time.Location) string {
	return DateKey(o.DisplayDate, loc)
}

// Identifier returns the notification identifier for this occurrence:
// the bare item id for a one-time item, itemID_YYYY-MM-DD otherwise.
func (o Occurrence) Identifier(loc *time.Location) string {
	if !o.IsVirtual {
		return o.ItemID
	}
	return OccurrenceIdentifier(o.ItemID, o.DateKey(loc))
}

// OccurrenceIdentifier builds the per-occurrence notification identifier.
func OccurrenceIdentifier(itemID, dateKey string) string {
	return itemID + "_" + dateKey
}
