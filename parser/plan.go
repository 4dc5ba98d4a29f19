package parser

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fleet-allocation/errors"
	"fleet-allocation/metrics"
	"fleet-allocation/models"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used for dispatch dates.
const DateLayout = "2006-01-02"

// PlanInput is the document form of a planning session, shared by YAML files
// and JSON request bodies.
type PlanInput struct {
	Order       OrderInput        `json:"order" yaml:"order"`
	Site        *SiteInput        `json:"site,omitempty" yaml:"site,omitempty"`
	Companies   []CompanyInput    `json:"companies" yaml:"companies" validate:"dive"`
	Allocations []AllocationInput `json:"allocations" yaml:"allocations" validate:"dive"`
	Fleet       map[string]int    `json:"fleet,omitempty" yaml:"fleet,omitempty" validate:"omitempty,dive,gte=0"`
}

type OrderInput struct {
	ID                string  `json:"id" yaml:"id"`
	TotalWeight       float64 `json:"total_weight" yaml:"total_weight" validate:"gt=0"`
	DispatchStartDate string  `json:"dispatch_start_date" yaml:"dispatch_start_date" validate:"required,calendar_date"`
	DispatchEndDate   string  `json:"dispatch_end_date" yaml:"dispatch_end_date" validate:"required,calendar_date"`
	DailyWeightLimit  float64 `json:"daily_weight_limit" yaml:"daily_weight_limit" validate:"gt=0"`
	DailyTruckLimit   int     `json:"daily_truck_limit" yaml:"daily_truck_limit" validate:"gt=0"`
	TripConfigMode    string  `json:"trip_config_mode" yaml:"trip_config_mode" validate:"required,oneof=fixedTripsPerDay tripDuration"`
	TripLimit         int     `json:"trip_limit" yaml:"trip_limit" validate:"gte=0"`
	TripDuration      float64 `json:"trip_duration" yaml:"trip_duration" validate:"gte=0"`
	CollectionSiteID  string  `json:"collection_site_id" yaml:"collection_site_id"`
}

// SiteInput keeps operating hours as given; malformed days fall back to the
// default open hours during planning instead of being rejected here.
type SiteInput struct {
	ID             string                     `json:"id" yaml:"id"`
	Name           string                     `json:"name" yaml:"name"`
	OperatingHours map[string]models.DayHours `json:"operating_hours" yaml:"operating_hours"`
}

type CompanyInput struct {
	ID                    string  `json:"id" yaml:"id" validate:"required"`
	Name                  string  `json:"name" yaml:"name"`
	DefaultWeightPerTruck float64 `json:"default_weight_per_truck" yaml:"default_weight_per_truck" validate:"gte=0"`
}

type AllocationInput struct {
	CompanyID       string  `json:"company_id" yaml:"company_id" validate:"required"`
	AllocatedWeight float64 `json:"allocated_weight" yaml:"allocated_weight" validate:"gte=0"`
	NumberOfTrucks  int     `json:"number_of_trucks" yaml:"number_of_trucks" validate:"gte=0"`
}

// ParsePlan decodes and validates a YAML plan document.
func ParsePlan(r io.Reader) (*PlanInput, error) {
	var in PlanInput
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("yaml").Inc()
		return nil, fmt.Errorf("%w: decode yaml: %v", errors.ErrInvalidPlan, err)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	metrics.ParserRecordsTotal.WithLabelValues("plan").Inc()
	return &in, nil
}

// Validate checks field rules and the cross-field rules of the order.
func (p *PlanInput) Validate() error {
	if err := validate.Struct(p); err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("validation").Inc()
		return fmt.Errorf("%w: %v", errors.ErrInvalidPlan, err)
	}

	o := p.Order
	switch models.TripConfigMode(o.TripConfigMode) {
	case models.FixedTripsPerDay:
		if o.TripLimit <= 0 {
			return fmt.Errorf("%w: trip_limit must be > 0 for %s", errors.ErrInvalidTripConfig, o.TripConfigMode)
		}
	case models.TripDuration:
		if o.TripDuration <= 0 {
			return fmt.Errorf("%w: trip_duration must be > 0 for %s", errors.ErrInvalidTripConfig, o.TripConfigMode)
		}
	}

	start, end, err := o.dates()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("%w: %s < %s", errors.ErrInvalidDateRange, o.DispatchEndDate, o.DispatchStartDate)
	}

	if p.Site != nil && o.CollectionSiteID != "" && p.Site.ID != "" && p.Site.ID != o.CollectionSiteID {
		return fmt.Errorf("%w: site %q does not match collection_site_id %q", errors.ErrInvalidPlan, p.Site.ID, o.CollectionSiteID)
	}

	seen := make(map[string]bool, len(p.Companies))
	for _, c := range p.Companies {
		if seen[c.ID] {
			return fmt.Errorf("%w: company %q listed twice", errors.ErrInvalidPlan, c.ID)
		}
		seen[c.ID] = true
	}

	return nil
}

func (o OrderInput) dates() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, strings.TrimSpace(o.DispatchStartDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: dispatch_start_date: %v", errors.ErrInvalidDate, err)
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(o.DispatchEndDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: dispatch_end_date: %v", errors.ErrInvalidDate, err)
	}
	return start, end, nil
}

// ToDomain converts a validated document into a plan and the fleet counts it
// carries (nil when the document has none).
func (p *PlanInput) ToDomain() (models.Plan, models.FleetAvailability, error) {
	start, end, err := p.Order.dates()
	if err != nil {
		return models.Plan{}, nil, err
	}

	plan := models.Plan{
		Order: models.Order{
			ID:                p.Order.ID,
			TotalWeight:       p.Order.TotalWeight,
			DispatchStartDate: start,
			DispatchEndDate:   end,
			DailyWeightLimit:  p.Order.DailyWeightLimit,
			DailyTruckLimit:   p.Order.DailyTruckLimit,
			TripConfigMode:    models.TripConfigMode(p.Order.TripConfigMode),
			TripLimit:         p.Order.TripLimit,
			TripDuration:      p.Order.TripDuration,
			CollectionSiteID:  p.Order.CollectionSiteID,
		},
		Companies:   make(map[string]models.Company, len(p.Companies)),
		Allocations: make([]models.Allocation, 0, len(p.Allocations)),
	}

	if p.Site != nil {
		plan.Site = &models.Site{
			ID:             p.Site.ID,
			Name:           p.Site.Name,
			OperatingHours: models.WeeklySchedule(p.Site.OperatingHours),
		}
		if plan.Site.ID == "" {
			plan.Site.ID = p.Order.CollectionSiteID
		}
	}

	for _, c := range p.Companies {
		plan.Companies[c.ID] = models.Company{
			ID:                    c.ID,
			Name:                  c.Name,
			DefaultWeightPerTruck: c.DefaultWeightPerTruck,
		}
	}

	for _, a := range p.Allocations {
		plan.Allocations = append(plan.Allocations, models.Allocation{
			CompanyID:       a.CompanyID,
			AllocatedWeight: a.AllocatedWeight,
			NumberOfTrucks:  a.NumberOfTrucks,
		})
	}

	var fleet models.FleetAvailability
	if p.Fleet != nil {
		fleet = models.FleetAvailability(p.Fleet)
	}

	return plan, fleet, nil
}
