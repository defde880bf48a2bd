package model

import "time"

// DateLayout is the calendar-date layout used for display.
const DateLayout = "2006-01-02"

// Date returns the calendar date y-m-d as midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time-of-day from t, reading the date in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today is the current calendar date in the local time zone.
func Today() time.Time {
	return DateOf(time.Now())
}

// FormatDate renders a calendar date as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
