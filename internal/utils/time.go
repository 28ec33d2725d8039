package utils

import (
	"strings"
	"time"
)

// Departure times and statement dates share these layouts so the API surface
// and the PDFs always agree on one format.
const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// ParseDate reads YYYY-MM-DD as local time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseDateTime reads "YYYY-MM-DD HH:MM:SS" as local time.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDateTime, strings.TrimSpace(s), time.Local)
}

// FormatDate renders YYYY-MM-DD local.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// FormatDateTime renders "YYYY-MM-DD HH:MM:SS" local.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}
