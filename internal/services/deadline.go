package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrParse означает, что дата или время не соответствуют формату.
var ErrParse = errors.New("malformed date or time")

const dateLayout = "2006-01-02"

var timeLayouts = []string{"15:04", "15:04:05"}

// ComputeDeadline переводит дату (YYYY-MM-DD) и время (HH:MM или HH:MM:SS)
// в абсолютный момент в часовом поясе now.
func ComputeDeadline(rawDate, rawTime string, now time.Time) (time.Time, error) {
	loc := now.Location()

	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(rawDate), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrParse, rawDate)
	}

	var clock time.Time
	parsed := false
	for _, layout := range timeLayouts {
		if clock, err = time.Parse(layout, strings.TrimSpace(rawTime)); err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrParse, rawTime)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc,
	), nil
}

// ComputeDeadlineRaw принимает строку вида "2025-01-01 10:00".
func ComputeDeadlineRaw(raw string, now time.Time) (time.Time, error) {
	parts := strings.Fields(raw)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	return ComputeDeadline(parts[0], parts[1], now)
}
