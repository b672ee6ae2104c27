package services

import "time"

const isoDateLayout = "2006-01-02"

// DateAtLocation truncates value to midnight of its calendar day in location.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// civilDate strips the clock and zone from value, keeping the calendar day the
// caller sees. All cycle arithmetic runs on these UTC midnights so that day
// differences never observe DST shifts.
func civilDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func addDays(value time.Time, days int) time.Time {
	return value.AddDate(0, 0, days)
}

func daysBetween(from time.Time, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}

func betweenInclusive(day time.Time, start time.Time, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !day.Before(start) && !day.After(end)
}

func sameDay(a time.Time, b time.Time) bool {
	return a.Format(isoDateLayout) == b.Format(isoDateLayout)
}

func ParseISODate(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(isoDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func FormatISODate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(isoDateLayout)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
