package sqlutil

import "time"

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = dateLayout + " " + timeLayout
)

// FormatDate renders t as YYYY-MM-DD. A zero t means now.
func FormatDate(t time.Time) string {
	return orNow(t).Format(dateLayout)
}

// FormatTime renders t as HH:MM:SS. A zero t means now.
func FormatTime(t time.Time) string {
	return orNow(t).Format(timeLayout)
}

// FormatDateTime renders t as "YYYY-MM-DD HH:MM:SS". A zero t means now.
func FormatDateTime(t time.Time) string {
	return orNow(t).Format(dateTimeLayout)
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
