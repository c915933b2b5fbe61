package booking

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	weekdayLabels = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}
	timeLabelRe   = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	reminderSteps = map[int]bool{5: true, 10: true, 15: true, 30: true}
)

// ParseDate accepts a calendar date or an RFC3339 instant and returns 00:00
// UTC of the UTC calendar day it names.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, ErrInvalidDate.wrap(err)
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// DateKey formats a normalized day.
func DateKey(day time.Time) string {
	return day.UTC().Format(dateLayout)
}

// WeekdayOf returns the SUN..SAT label of a normalized day.
func WeekdayOf(day time.Time) string {
	return weekdayLabels[day.UTC().Weekday()]
}

// TimeKey is the comparison form of a time label.
func TimeKey(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// NormalizeTime validates an HH:MM label and returns its key form.
func NormalizeTime(label string) (string, error) {
	key := TimeKey(label)
	if !timeLabelRe.MatchString(key) {
		return "", ErrInvalidTime
	}
	return key, nil
}

// NormalizeDay accepts SUN..SAT or a full weekday name in any case.
func NormalizeDay(raw string) (string, error) {
	day := strings.ToUpper(strings.TrimSpace(raw))
	for i, label := range weekdayLabels {
		if day == label || day == strings.ToUpper(time.Weekday(i).String()) {
			return label, nil
		}
	}
	return "", ErrInvalidDay
}

func validReminder(minutes int) error {
	if !reminderSteps[minutes] {
		return ErrInvalidReminder
	}
	return nil
}

// requireFields takes name, value pairs and returns ErrMissingField naming
// the first empty value.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return ErrMissingField.withMessage("%s is required", pairs[i])
		}
	}
	return nil
}

// appointmentStart combines a normalized day with an HH:MM key, read as UTC.
func appointmentStart(day time.Time, timeKey string) (time.Time, error) {
	clock, err := time.Parse("15:04", timeKey)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}
