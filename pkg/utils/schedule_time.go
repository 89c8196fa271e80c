package utils

import (
	"errors"
	"strings"
	"time"
)

// LocalZone is the fixed offset (UTC+9) that naive schedule input is read in
// and that listings are displayed in.
var LocalZone = time.FixedZone("JST", 9*60*60)

// StoredTimeLayout is how scheduled times are persisted: UTC with an explicit
// +00:00 offset, second resolution.
const StoredTimeLayout = "2006-01-02T15:04:05-07:00"

var errUnparseableTime = errors.New("unrecognized time format")

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04-0700",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseScheduleInput reads a user supplied schedule time. Input without an
// offset, and input using the Z shorthand, is taken as LocalZone wall time.
// The result is in UTC, truncated to whole seconds.
func ParseScheduleInput(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+09:00"
	}
	t, err := parseIn(s, LocalZone)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Second), nil
}

// ParseStoredTime reads a persisted schedule time. Stored values without an
// offset predate normalization and are taken as UTC.
func ParseStoredTime(s string) (time.Time, error) {
	t, err := parseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatStoredTime renders t in the persisted layout.
func FormatStoredTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(StoredTimeLayout)
}

// ToLocal converts an instant to LocalZone for display.
func ToLocal(t time.Time) time.Time {
	return t.In(LocalZone)
}

func parseIn(s string, naiveLoc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errUnparseableTime
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, naiveLoc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnparseableTime
}
