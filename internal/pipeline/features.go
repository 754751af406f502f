package pipeline

import (
	"time"

	"cloud.google.com/go/civil"
)

// DayOfWeek maps a calendar date to a Monday-based weekday index,
// 0=Monday through 6=Sunday.
func DayOfWeek(d civil.Date) int {
	weekday := d.In(time.UTC).Weekday() // Sunday=0 in the time package
	return (int(weekday) + 6) % 7
}

// WeekOfMonth buckets a day-of-month into 1-based weeks of seven days:
// days 1-7 are week 1, 8-14 week 2, and day 31 falls in week 5.
func WeekOfMonth(day int) int {
	return (day-1)/7 + 1
}
