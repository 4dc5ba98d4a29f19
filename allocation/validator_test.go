package allocation_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fleet-allocation/allocation"
	customerrors "fleet-allocation/errors"
	"fleet-allocation/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
func date(day int) time.Time {
	return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
}

// newPlan builds a three-day order at two fixed trips per day.
// With weightPerTruck 10 each truck carries 60 over the order.
func newPlan(total float64, weightPerTruck float64, allocs ...models.Allocation) models.Plan {
	companies := map[string]models.Company{}
	for _, a := range allocs {
		companies[a.CompanyID] = models.Company{ID: a.CompanyID, Name: "Transporter " + a.CompanyID, DefaultWeightPerTruck: weightPerTruck}
	}
	return models.Plan{
		Order: models.Order{
			ID:                "ORD-1",
			TotalWeight:       total,
			DispatchStartDate: date(1),
			DispatchEndDate:   date(3),
			DailyWeightLimit:  100000,
			DailyTruckLimit:   100,
			TripConfigMode:    models.FixedTripsPerDay,
			TripLimit:         2,
		},
		Companies:   companies,
		Allocations: allocs,
	}
}

func codes(r *allocation.Report) []string {
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Code()
	}
	return out
}

func TestCheck_Coverage(t *testing.T) {
	fleet := models.FleetAvailability{"a": 5, "b": 5}

	tests := map[string]struct {
		weights  [2]float64
		expected []string
		amount   float64
		message  string
	}{
		"ExactCoverage": {weights: [2]float64{600, 400}, expected: []string{}},
		"UnderAllocated": {
			weights:  [2]float64{600, 300},
			expected: []string{"under_allocated"},
			amount:   100,
			message:  "allocated 900 kg of 1000 kg, 100 kg short",
		},
		"OverAllocated": {
			weights:  [2]float64{600, 500},
			expected: []string{"over_allocated"},
			amount:   100,
			message:  "allocated 1100 kg of 1000 kg, 100 kg over",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			plan := newPlan(1000, 100,
				models.Allocation{CompanyID: "a", AllocatedWeight: tt.weights[0], NumberOfTrucks: 1},
				models.Allocation{CompanyID: "b", AllocatedWeight: tt.weights[1], NumberOfTrucks: 1},
			)
			r := allocation.Check(plan, fleet)

			assert.Equal(t, tt.expected, codes(r))
			if len(tt.expected) == 0 {
				assert.True(t, r.Accepted())
				assert.NoError(t, r.Err())
				return
			}
			assert.InDelta(t, tt.amount, r.Violations[0].Amount, 1e-9)
			assert.Equal(t, tt.message, r.Violations[0].Message)
		})
	}
}

func TestCheck_ExactDecimalCoverage(t *testing.T) {
	plan := newPlan(0.3, 10,
		models.Allocation{CompanyID: "a", AllocatedWeight: 0.1, NumberOfTrucks: 1},
		models.Allocation{CompanyID: "b", AllocatedWeight: 0.2, NumberOfTrucks: 1},
	)
	r := allocation.Check(plan, models.FleetAvailability{"a": 1, "b": 1})
	assert.Empty(t, r.Violations, "0.1 + 0.2 must cover 0.3 exactly")
	assert.Equal(t, 0.3, r.AllocatedWeight)
}

func TestCheck_MinimumTrucks(t *testing.T) {
	// capacity 60 per truck, 125 kg needs 3 trucks
	tests := map[string]struct {
		trucks    int
		available int
		expected  []string
	}{
		"AtMinimum":         {trucks: 3, available: 3, expected: []string{}},
		"BelowMinimum":      {trucks: 2, available: 5, expected: []string{"below_minimum_trucks"}},
		"ExceedsFleet":      {trucks: 4, available: 3, expected: []string{"exceeds_fleet"}},
		"InsufficientFleet": {trucks: 2, available: 2, expected: []string{"insufficient_fleet", "below_minimum_trucks"}},
		"MissingFleetEntry": {trucks: 3, available: -1, expected: []string{"insufficient_fleet", "exceeds_fleet"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			plan := newPlan(125, 10, models.Allocation{CompanyID: "a", AllocatedWeight: 125, NumberOfTrucks: tt.trucks})
			fleet := models.FleetAvailability{"a": tt.available}
			if tt.available < 0 {
				fleet = models.FleetAvailability{}
			}

			r := allocation.Check(plan, fleet)
			assert.Equal(t, tt.expected, codes(r))
			require.Len(t, r.Lines, 1)
			assert.Equal(t, 3, r.Lines[0].MinimumTrucks)
			assert.Equal(t, 60.0, r.Lines[0].Estimate.CapacityPerTruck)
		})
	}
}

func TestCheck_CollectsAllViolationsInOrder(t *testing.T) {
	plan := newPlan(1000, 10,
		models.Allocation{CompanyID: "a", AllocatedWeight: 0, NumberOfTrucks: 9},
		models.Allocation{CompanyID: "b", AllocatedWeight: 125, NumberOfTrucks: 1},
	)
	plan.Order.DailyTruckLimit = 3

	r := allocation.Check(plan, models.FleetAvailability{"a": 5, "b": 2})

	assert.Equal(t, []string{
		"empty_allocation",
		"exceeds_fleet",
		"insufficient_fleet",
		"below_minimum_trucks",
		"under_allocated",
		"daily_truck_limit_exceeded",
	}, codes(r))
	assert.Equal(t, "a", r.Violations[0].CompanyID)
	assert.Equal(t, "Transporter a", r.Violations[0].Company)
	assert.Equal(t, "b", r.Violations[2].CompanyID)
	assert.Empty(t, r.Violations[4].CompanyID)
	assert.Equal(t, 10, r.TotalTrucks)
	assert.Equal(t, 3, r.RequiredTrucks())
}

func TestCheck_DailyWeightLimit(t *testing.T) {
	plan := newPlan(900, 1000,
		models.Allocation{CompanyID: "a", AllocatedWeight: 450, NumberOfTrucks: 1},
		models.Allocation{CompanyID: "b", AllocatedWeight: 450, NumberOfTrucks: 1},
	)
	plan.Order.DailyWeightLimit = 250

	r := allocation.Check(plan, models.FleetAvailability{"a": 1, "b": 1})

	require.Equal(t, []string{"daily_weight_limit_exceeded"}, codes(r))
	assert.Equal(t, 300.0, r.DailyWeight)
	assert.InDelta(t, 50, r.Violations[0].Amount, 1e-9)
	assert.Contains(t, r.Violations[0].Message, "exceeds the limit of 250 kg")

	plan.Order.DailyWeightLimit = 300
	assert.Empty(t, allocation.Check(plan, models.FleetAvailability{"a": 1, "b": 1}).Violations, "limit is inclusive")
}

func TestCheck_SupplementaryRules(t *testing.T) {
	t.Run("UnknownTransporter", func(t *testing.T) {
		plan := newPlan(100, 10)
		plan.Allocations = []models.Allocation{{CompanyID: "ghost", AllocatedWeight: 100, NumberOfTrucks: 1}}

		r := allocation.Check(plan, models.FleetAvailability{"ghost": 1})
		assert.Equal(t, []string{"zero_capacity"}, codes(r))
		assert.Contains(t, r.Violations[0].Message, "unknown transporter")
	})

	t.Run("ZeroWeightPerTruck", func(t *testing.T) {
		plan := newPlan(100, 0, models.Allocation{CompanyID: "a", AllocatedWeight: 100, NumberOfTrucks: 1})
		r := allocation.Check(plan, models.FleetAvailability{"a": 1})
		assert.Equal(t, []string{"zero_capacity"}, codes(r))
		assert.Equal(t, 0, r.Lines[0].MinimumTrucks)
	})

	t.Run("DuplicateTransporter", func(t *testing.T) {
		plan := newPlan(120, 10,
			models.Allocation{CompanyID: "a", AllocatedWeight: 60, NumberOfTrucks: 1},
			models.Allocation{CompanyID: "a", AllocatedWeight: 60, NumberOfTrucks: 1},
		)
		r := allocation.Check(plan, models.FleetAvailability{"a": 2})
		assert.Equal(t, []string{"duplicate_transporter"}, codes(r))
	})
}

func TestCheck_SiteClosedWarning(t *testing.T) {
	plan := newPlan(60, 60, models.Allocation{CompanyID: "a", AllocatedWeight: 60, NumberOfTrucks: 1})
	plan.Order.TripConfigMode = models.TripDuration
	plan.Order.TripDuration = 4
	plan.Order.DispatchStartDate = date(3)
	plan.Order.DispatchEndDate = date(3)
	plan.Site = &models.Site{ID: "pit", OperatingHours: models.WeeklySchedule{
		"wednesday": {Open: models.Closed, Close: models.Closed},
	}}

	r := allocation.Check(plan, models.FleetAvailability{"a": 1})

	assert.True(t, r.Accepted(), "closed day still yields one trip")
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, allocation.WarningSiteClosed, r.Warnings[0].Code)
	assert.Contains(t, r.Warnings[0].Message, "wednesday")
	assert.Equal(t, 1.0, r.Lines[0].Estimate.TripsPerDay)
}

func TestCheck_Idempotent(t *testing.T) {
	plan := newPlan(1000, 10,
		models.Allocation{CompanyID: "a", AllocatedWeight: 0, NumberOfTrucks: 9},
		models.Allocation{CompanyID: "b", AllocatedWeight: 125, NumberOfTrucks: 1},
	)
	fleet := models.FleetAvailability{"a": 5, "b": 2}

	assert.Equal(t, allocation.Check(plan, fleet), allocation.Check(plan, fleet))
}

func TestValidate(t *testing.T) {
	plan := newPlan(1000, 100,
		models.Allocation{CompanyID: "a", AllocatedWeight: 600, NumberOfTrucks: 1},
		models.Allocation{CompanyID: "b", AllocatedWeight: 300, NumberOfTrucks: 1},
	)
	fleet := models.FleetAvailability{"a": 5, "b": 5}

	err := allocation.Validate(plan, fleet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, customerrors.ErrUnderAllocated))
	assert.False(t, errors.Is(err, customerrors.ErrOverAllocated))

	var verr *customerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 1)
	assert.Contains(t, err.Error(), "100 kg short")

	plan.Allocations[1].AllocatedWeight = 400
	assert.NoError(t, allocation.Validate(plan, fleet))
}

func TestViolation_JSON(t *testing.T) {
	v := &customerrors.Violation{Kind: customerrors.ErrExceedsFleet, CompanyID: "a", Message: "too many", Trucks: 4}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"exceeds_fleet","company_id":"a","message":"too many","trucks":4}`, string(b))
}
