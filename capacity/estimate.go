package capacity

import (
	"fleet-allocation/models"
)

// Estimate holds every intermediate figure of the capacity pipeline for one
// transporter on one order.
type Estimate struct {
	CompanyID            string  `json:"company_id"`
	OpenHours            int     `json:"open_hours"`
	SiteClosed           bool    `json:"site_closed"`
	TripsPerDay          float64 `json:"trips_per_day"`
	DurationDays         int     `json:"duration_days"`
	WeightPerTrip        float64 `json:"weight_per_trip"`
	WeightPerDayPerTruck float64 `json:"weight_per_day_per_truck"`
	CapacityPerTruck     float64 `json:"capacity_per_truck"`
}

// MinimumTrucks returns the trucks needed to carry weight at this capacity.
func (e Estimate) MinimumTrucks(weight float64) int {
	return MinimumTrucks(weight, e.CapacityPerTruck)
}

// ForCompany runs the capacity pipeline for one transporter. Operating hours
// are resolved for the dispatch start date; site may be nil, in which case
// the default open hours apply.
func ForCompany(order models.Order, site *models.Site, company models.Company) Estimate {
	var schedule models.WeeklySchedule
	if site != nil {
		schedule = site.OperatingHours
	}

	openHours := DailyOpenHours(schedule, order.DispatchStartDate)
	trips := TripsPerDay(order.TripConfigMode, order.TripLimit, order.TripDuration, openHours)
	days := OrderDurationDays(order.DispatchStartDate, order.DispatchEndDate)

	return Estimate{
		CompanyID:            company.ID,
		OpenHours:            openHours,
		SiteClosed:           order.TripConfigMode == models.TripDuration && openHours <= 0,
		TripsPerDay:          trips,
		DurationDays:         days,
		WeightPerTrip:        company.DefaultWeightPerTruck,
		WeightPerDayPerTruck: WeightPerDayPerTruck(trips, company.DefaultWeightPerTruck),
		CapacityPerTruck:     CapacityPerTruckOverDuration(trips, company.DefaultWeightPerTruck, days),
	}
}
