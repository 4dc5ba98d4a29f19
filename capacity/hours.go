package capacity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleet-allocation/models"
)

// DefaultOpenHours is used when a site's schedule is missing or malformed
// so that incomplete configuration does not stop capacity planning.
const DefaultOpenHours = 12

// DailyOpenHours returns the number of hours the site is open on the weekday
// of ref. Only the hour component of "HH:MM" is used; minutes are dropped.
// The result is negative when close is before open; callers treat any value
// <= 0 as no capacity for that day.
func DailyOpenHours(schedule models.WeeklySchedule, ref time.Time) int {
	if len(schedule) == 0 {
		return DefaultOpenHours
	}

	day, ok := schedule.Day(models.WeekdayOf(ref))
	if !ok {
		return DefaultOpenHours
	}
	if strings.TrimSpace(day.Open) == "" || strings.TrimSpace(day.Close) == "" {
		return DefaultOpenHours
	}
	if day.IsClosed() {
		return 0
	}

	openHour, err := hourOf(day.Open)
	if err != nil {
		return DefaultOpenHours
	}
	closeHour, err := hourOf(day.Close)
	if err != nil {
		return DefaultOpenHours
	}

	return closeHour - openHour
}

// hourOf extracts the hour of an "HH:MM" value.
func hourOf(value string) (int, error) {
	h, _, _ := strings.Cut(strings.TrimSpace(value), ":")
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, err
	}
	if hour < 0 || hour > 24 {
		return 0, fmt.Errorf("hour out of range: %d", hour)
	}
	return hour, nil
}
