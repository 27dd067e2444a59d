package recur

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/plannerd/internal/models"
)

// The repeat rule persists as an RFC 5545 RRULE string in a text column.
// Daily/Weekly/Monthly/Yearly map to a bare FREQ; a custom cadence maps to
// FREQ=WEEKLY with INTERVAL and BYDAY. The evaluator never consumes the RRULE
// form directly; this is only the storage codec.

var weekdayNames = map[int]string{
	0: "SU", 1: "MO", 2: "TU", 3: "WE", 4: "TH", 5: "FR", 6: "SA",
}

// rrule-go weekdays back to Sunday=0 indices.
var weekdayIndex = map[rrule.Weekday]int{
	rrule.SU: 0, rrule.MO: 1, rrule.TU: 2, rrule.WE: 3,
	rrule.TH: 4, rrule.FR: 5, rrule.SA: 6,
}

// EncodeRule serializes a repeat rule for storage. RepeatNone encodes as "".
func EncodeRule(repeat models.Repeat, cfg *models.CustomConfig) string {
	switch repeat {
	case models.RepeatDaily:
		return "FREQ=DAILY"
	case models.RepeatWeekly:
		return "FREQ=WEEKLY"
	case models.RepeatMonthly:
		return "FREQ=MONTHLY"
	case models.RepeatYearly:
		return "FREQ=YEARLY"
	case models.RepeatCustom:
		return encodeCustom(cfg)
	default:
		return ""
	}
}

func encodeCustom(cfg *models.CustomConfig) string {
	days, interval := normalizeCustom(cfg)
	parts := []string{"FREQ=WEEKLY"}
	if interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", interval))
	}
	if len(days) > 0 {
		names := make([]string, len(days))
		for i, d := range days {
			names[i] = weekdayNames[d]
		}
		parts = append(parts, "BYDAY="+strings.Join(names, ","))
	}
	return strings.Join(parts, ";")
}

// DecodeRule parses a stored rule string back into the domain repeat kind.
// An empty string is RepeatNone. A malformed string also decodes to
// RepeatNone with the parse error returned for logging; corrupt stored rules
// must never block loading the item.
func DecodeRule(raw string) (models.Repeat, *models.CustomConfig, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "RRULE:"))
	if raw == "" {
		return models.RepeatNone, nil, nil
	}

	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return models.RepeatNone, nil, fmt.Errorf("failed to parse RRULE %q: %w", raw, err)
	}

	switch opt.Freq {
	case rrule.DAILY:
		return models.RepeatDaily, nil, nil
	case rrule.MONTHLY:
		return models.RepeatMonthly, nil, nil
	case rrule.YEARLY:
		return models.RepeatYearly, nil, nil
	case rrule.WEEKLY:
		if len(opt.Byweekday) == 0 && opt.Interval <= 1 {
			return models.RepeatWeekly, nil, nil
		}
		return models.RepeatCustom, decodeCustom(opt), nil
	default:
		return models.RepeatNone, nil, fmt.Errorf("unsupported RRULE frequency in %q", raw)
	}
}

func decodeCustom(opt *rrule.ROption) *models.CustomConfig {
	var days []int
	for _, wd := range opt.Byweekday {
		if idx, ok := weekdayIndex[wd]; ok {
			days = append(days, idx)
		}
	}
	sort.Ints(days)

	interval := opt.Interval
	if interval < 1 {
		interval = 1
	}
	return &models.CustomConfig{Days: days, IntervalWeeks: interval}
}
