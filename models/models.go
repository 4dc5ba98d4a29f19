package models

import (
	"strings"
	"time"
)

// TripConfigMode selects how trips per truck per day are derived for an order.
type TripConfigMode string

const (
	FixedTripsPerDay TripConfigMode = "fixedTripsPerDay"
	TripDuration     TripConfigMode = "tripDuration"
)

// Closed marks a schedule field for a day the site does not operate.
const Closed = "closed"

// Weekday indexes the week starting on Monday (Monday=0 .. Sunday=6).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// String returns the lowercase weekday name used as a schedule key.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return ""
	}
	return weekdayNames[d]
}

// WeekdayOf resolves the calendar weekday of t without any locale lookup.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// DayHours holds the opening and closing time of a single day.
// Each field is "HH:MM" or "closed".
type DayHours struct {
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`
}

// IsClosed reports whether either field marks the day as closed.
func (h DayHours) IsClosed() bool {
	return strings.EqualFold(strings.TrimSpace(h.Open), Closed) ||
		strings.EqualFold(strings.TrimSpace(h.Close), Closed)
}

// WeeklySchedule maps weekday names to their operating hours.
type WeeklySchedule map[string]DayHours

// Day returns the hours for d. Keys are matched case-insensitively.
func (s WeeklySchedule) Day(d Weekday) (DayHours, bool) {
	name := d.String()
	if h, ok := s[name]; ok {
		return h, true
	}
	for k, h := range s {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return h, true
		}
	}
	return DayHours{}, false
}

// Site is a physical collection location.
type Site struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	OperatingHours WeeklySchedule `json:"operating_hours,omitempty"`
}

// Company is a transporter contributing trucks to an order.
type Company struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	DefaultWeightPerTruck float64 `json:"default_weight_per_truck"`
}

// DisplayName falls back to the ID when no name is set.
func (c Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Order is a committed shipment request.
type Order struct {
	ID                string         `json:"id"`
	TotalWeight       float64        `json:"total_weight"`
	DispatchStartDate time.Time      `json:"dispatch_start_date"`
	DispatchEndDate   time.Time      `json:"dispatch_end_date"`
	DailyWeightLimit  float64        `json:"daily_weight_limit"`
	DailyTruckLimit   int            `json:"daily_truck_limit"`
	TripConfigMode    TripConfigMode `json:"trip_config_mode"`
	TripLimit         int            `json:"trip_limit,omitempty"`
	TripDuration      float64        `json:"trip_duration,omitempty"`
	CollectionSiteID  string         `json:"collection_site_id,omitempty"`
}

// Allocation assigns part of an order's weight to one transporter.
type Allocation struct {
	CompanyID       string  `json:"company_id"`
	AllocatedWeight float64 `json:"allocated_weight"`
	NumberOfTrucks  int     `json:"number_of_trucks"`
}

// FleetAvailability maps company IDs to the trucks they can currently commit.
type FleetAvailability map[string]int

// Plan is the caller-held state of a planning session.
type Plan struct {
	Order       Order
	Site        *Site
	Companies   map[string]Company
	Allocations []Allocation
}

// CompanyIDs returns the distinct transporter IDs referenced by the allocations,
// in first-seen order.
func (p Plan) CompanyIDs() []string {
	seen := make(map[string]bool, len(p.Allocations))
	ids := make([]string, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		if seen[a.CompanyID] {
			continue
		}
		seen[a.CompanyID] = true
		ids = append(ids, a.CompanyID)
	}
	return ids
}
