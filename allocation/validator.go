// Package allocation validates per-transporter allocations of an order against
// truck capacity, fleet availability and the order's own limits.
//
// Validation never stops at the first failure. Per-allocation rules run for
// every allocation in input order, then the order-level rules run once over
// the whole set, and every broken rule is reported.
package allocation

import (
	"fmt"
	"strconv"

	"fleet-allocation/capacity"
	customerrors "fleet-allocation/errors"
	"fleet-allocation/models"

	"github.com/shopspring/decimal"
)

// Warning codes.
const (
	WarningSiteClosed = "site_closed"
)

// Check evaluates plan against fleet and returns the full report.
// It has no side effects; a transporter missing from fleet has no trucks.
func Check(plan models.Plan, fleet models.FleetAvailability) *Report {
	order := plan.Order
	days := capacity.OrderDurationDays(order.DispatchStartDate, order.DispatchEndDate)

	r := &Report{
		OrderID:          order.ID,
		TotalWeight:      order.TotalWeight,
		DurationDays:     days,
		DailyWeightLimit: order.DailyWeightLimit,
		DailyTruckLimit:  order.DailyTruckLimit,
		Lines:            make([]Line, 0, len(plan.Allocations)),
		Violations:       make([]*customerrors.Violation, 0),
	}

	if w, ok := siteClosedWarning(plan); ok {
		r.Warnings = append(r.Warnings, w)
	}

	allocated := decimal.Zero
	seen := make(map[string]bool, len(plan.Allocations))

	for _, a := range plan.Allocations {
		company, known := plan.Companies[a.CompanyID]
		if !known {
			company = models.Company{ID: a.CompanyID}
		}
		est := capacity.ForCompany(order, plan.Site, company)
		line := Line{
			CompanyID:       a.CompanyID,
			Company:         company.DisplayName(),
			AllocatedWeight: a.AllocatedWeight,
			NumberOfTrucks:  a.NumberOfTrucks,
			MinimumTrucks:   est.MinimumTrucks(a.AllocatedWeight),
			AvailableTrucks: fleet[a.CompanyID],
			Estimate:        est,
		}
		r.Lines = append(r.Lines, line)

		if seen[a.CompanyID] {
			r.add(line, customerrors.ErrDuplicateTransporter,
				fmt.Sprintf("%s is allocated more than once", line.Company))
		}
		seen[a.CompanyID] = true

		r.checkLine(line, known)

		allocated = allocated.Add(decimal.NewFromFloat(a.AllocatedWeight))
		r.TotalTrucks += a.NumberOfTrucks
	}

	r.AllocatedWeight = allocated.InexactFloat64()
	r.checkOrder(allocated)

	return r
}

// Validate returns nil when the allocations can be committed, otherwise a
// *errors.ValidationError carrying every violation.
func Validate(plan models.Plan, fleet models.FleetAvailability) error {
	return evaluate(plan, fleet).Err()
}

func (r *Report) checkLine(l Line, known bool) {
	if l.AllocatedWeight <= 0 {
		r.add(l, customerrors.ErrEmptyAllocation,
			fmt.Sprintf("%s: allocated weight must be greater than 0", l.Company))
	} else if l.Estimate.CapacityPerTruck <= 0 {
		msg := fmt.Sprintf("%s: truck capacity over the order is 0, check weight per truck and trip configuration", l.Company)
		if !known {
			msg = fmt.Sprintf("%s: unknown transporter, truck capacity cannot be computed", l.Company)
		}
		r.add(l, customerrors.ErrZeroCapacity, msg)
	}

	if l.MinimumTrucks > l.AvailableTrucks {
		v := r.add(l, customerrors.ErrInsufficientFleet,
			fmt.Sprintf("%s: requires at least %d trucks but only %d are available",
				l.Company, l.MinimumTrucks, l.AvailableTrucks))
		v.Required = l.MinimumTrucks
	}
	if l.NumberOfTrucks < l.MinimumTrucks {
		v := r.add(l, customerrors.ErrBelowMinimumTrucks,
			fmt.Sprintf("%s: %d trucks assigned, at least %d required to carry %s kg",
				l.Company, l.NumberOfTrucks, l.MinimumTrucks, kg(l.AllocatedWeight)))
		v.Required = l.MinimumTrucks
	}
	if l.NumberOfTrucks > l.AvailableTrucks {
		r.add(l, customerrors.ErrExceedsFleet,
			fmt.Sprintf("%s: %d trucks assigned but only %d are available",
				l.Company, l.NumberOfTrucks, l.AvailableTrucks))
	}
}

func (r *Report) checkOrder(allocated decimal.Decimal) {
	total := decimal.NewFromFloat(r.TotalWeight)

	switch diff := allocated.Sub(total); diff.Sign() {
	case -1:
		short := diff.Neg()
		r.addOrder(customerrors.ErrUnderAllocated, short.InexactFloat64(),
			fmt.Sprintf("allocated %s kg of %s kg, %s kg short", allocated, total, short))
	case 1:
		r.addOrder(customerrors.ErrOverAllocated, diff.InexactFloat64(),
			fmt.Sprintf("allocated %s kg of %s kg, %s kg over", allocated, total, diff))
	}

	// sum(w/days) == sum(w)/days
	daily := allocated.Div(decimal.NewFromInt(int64(r.DurationDays)))
	r.DailyWeight = daily.InexactFloat64()
	limit := decimal.NewFromFloat(r.DailyWeightLimit)
	if daily.GreaterThan(limit) {
		excess := daily.Sub(limit)
		r.addOrder(customerrors.ErrDailyWeightLimitExceeded, excess.InexactFloat64(),
			fmt.Sprintf("daily weight %s kg exceeds the limit of %s kg by %s kg",
				daily.Round(2), limit, excess.Round(2)))
	}

	if r.TotalTrucks > r.DailyTruckLimit {
		excess := r.TotalTrucks - r.DailyTruckLimit
		v := r.addOrder(customerrors.ErrDailyTruckLimitExceeded, float64(excess),
			fmt.Sprintf("%d trucks exceed the daily truck limit of %d by %d",
				r.TotalTrucks, r.DailyTruckLimit, excess))
		v.Trucks = r.TotalTrucks
	}
}

func (r *Report) add(l Line, kind error, msg string) *customerrors.Violation {
	v := &customerrors.Violation{
		Kind:      kind,
		CompanyID: l.CompanyID,
		Company:   l.Company,
		Message:   msg,
		Available: l.AvailableTrucks,
		Trucks:    l.NumberOfTrucks,
		Amount:    l.AllocatedWeight,
	}
	r.Violations = append(r.Violations, v)
	return v
}

func (r *Report) addOrder(kind error, amount float64, msg string) *customerrors.Violation {
	v := &customerrors.Violation{
		Kind:    kind,
		Message: msg,
		Amount:  amount,
	}
	r.Violations = append(r.Violations, v)
	return v
}

// siteClosedWarning flags a duration-based order whose site is closed on the
// reference day but which still gets one trip per day.
// TODO: confirm with product whether a closed day should yield zero trips.
func siteClosedWarning(plan models.Plan) (Warning, bool) {
	order := plan.Order
	if order.TripConfigMode != models.TripDuration {
		return Warning{}, false
	}
	var schedule models.WeeklySchedule
	if plan.Site != nil {
		schedule = plan.Site.OperatingHours
	}
	if capacity.DailyOpenHours(schedule, order.DispatchStartDate) > 0 {
		return Warning{}, false
	}
	day := models.WeekdayOf(order.DispatchStartDate)
	return Warning{
		Code:    WarningSiteClosed,
		Message: fmt.Sprintf("collection site has no open hours on %s; trucks are still counted for one trip per day", day),
	}, true
}

func kg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
