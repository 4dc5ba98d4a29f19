package allocation

import (
	"fleet-allocation/capacity"
	customerrors "fleet-allocation/errors"
)

// Line is the evaluated state of one transporter's allocation.
type Line struct {
	CompanyID       string            `json:"company_id"`
	Company         string            `json:"company"`
	AllocatedWeight float64           `json:"allocated_weight"`
	NumberOfTrucks  int               `json:"number_of_trucks"`
	MinimumTrucks   int               `json:"minimum_trucks"`
	AvailableTrucks int               `json:"available_trucks"`
	Estimate        capacity.Estimate `json:"estimate"`
}

// Warning is a non-blocking finding shown alongside violations.
type Warning struct {
	Code      string `json:"code"`
	CompanyID string `json:"company_id,omitempty"`
	Message   string `json:"message"`
}

// Report is the outcome of validating one allocation set.
type Report struct {
	OrderID          string                     `json:"order_id"`
	TotalWeight      float64                    `json:"total_weight"`
	AllocatedWeight  float64                    `json:"allocated_weight"`
	DurationDays     int                        `json:"duration_days"`
	DailyWeight      float64                    `json:"daily_weight"`
	DailyWeightLimit float64                    `json:"daily_weight_limit"`
	TotalTrucks      int                        `json:"total_trucks"`
	DailyTruckLimit  int                        `json:"daily_truck_limit"`
	Lines            []Line                     `json:"lines"`
	Violations       []*customerrors.Violation `json:"violations"`
	Warnings         []Warning                  `json:"warnings,omitempty"`
}

// Accepted reports whether the allocation set can be committed.
func (r *Report) Accepted() bool {
	return len(r.Violations) == 0
}

// RequiredTrucks sums the minimum trucks over all lines.
func (r *Report) RequiredTrucks() int {
	total := 0
	for _, l := range r.Lines {
		total += l.MinimumTrucks
	}
	return total
}

// Err returns nil when accepted, otherwise a *ValidationError listing every
// violation in evaluation order.
func (r *Report) Err() error {
	if r.Accepted() {
		return nil
	}
	return &customerrors.ValidationError{Violations: r.Violations}
}
