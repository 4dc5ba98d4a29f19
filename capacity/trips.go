package capacity

import (
	"math"

	"fleet-allocation/models"
)

// hoursPerDay bounds a same-day trip.
const hoursPerDay = 24.0

// TripsPerDay returns how many trips one truck completes per operating day.
//
// In fixed mode the configured trip limit is returned unchanged. In duration
// mode a trip that fits the open window repeats floor(openHours/duration)
// times; a same-day trip longer than the window still counts as one trip; a
// trip longer than a day yields the fraction 1/ceil(duration/24) so capacity
// accrues once every N days. The fraction is not rounded.
//
// A closed day (openHours 0) with a same-day trip falls into the "longer than
// the window" branch and yields 1.
func TripsPerDay(mode models.TripConfigMode, tripLimit int, tripDuration float64, openHours int) float64 {
	switch mode {
	case models.FixedTripsPerDay:
		return float64(tripLimit)
	case models.TripDuration:
		if tripDuration <= 0 || math.IsNaN(tripDuration) {
			return 0
		}
		if tripDuration <= hoursPerDay {
			if tripDuration <= float64(openHours) {
				return math.Floor(float64(openHours) / tripDuration)
			}
			return 1
		}
		return 1 / math.Ceil(tripDuration/hoursPerDay)
	default:
		return 0
	}
}
