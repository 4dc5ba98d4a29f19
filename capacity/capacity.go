// Package capacity converts an order's trip configuration and its site's
// operating hours into per-truck capacity and minimum truck counts.
//
// All functions are pure. Zero or missing capacity is propagated as 0 rather
// than reported as an error; the allocation validator decides what a zero
// capacity means for a given allocation.
package capacity

import (
	"math"
	"time"
)

// OrderDurationDays counts the operative days of an order, inclusive of both
// dispatch dates. A same-day order lasts one day.
func OrderDurationDays(start, end time.Time) int {
	s := calendarDay(start)
	e := calendarDay(end)

	days := int(math.Ceil(e.Sub(s).Hours()/24)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// calendarDay drops the clock and zone so that only the calendar date counts.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeightPerDayPerTruck is the weight one truck moves per day.
func WeightPerDayPerTruck(tripsPerDay, weightPerTrip float64) float64 {
	return tripsPerDay * weightPerTrip
}

// CapacityPerTruckOverDuration is the total weight one truck can move across
// the whole order. A zero trip rate or per-trip weight yields 0.
func CapacityPerTruckOverDuration(tripsPerDay, weightPerTrip float64, durationDays int) float64 {
	return WeightPerDayPerTruck(tripsPerDay, weightPerTrip) * float64(durationDays)
}

// MinimumTrucks returns the fewest trucks needed to carry weight.
// It returns 0 when capacity is not positive; callers must treat that as
// "cannot allocate" for a positive weight.
func MinimumTrucks(weight, capacityPerTruck float64) int {
	if capacityPerTruck <= 0 || weight <= 0 {
		return 0
	}
	return int(math.Ceil(weight / capacityPerTruck))
}
