package allocation_test

import (
	"context"
	"errors"
	"testing"

	"fleet-allocation/allocation"
	customerrors "fleet-allocation/errors"
	"fleet-allocation/fleet"
	"fleet-allocation/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{ err error }

func (f failingSource) AvailableTrucks(context.Context, string) (int, error) {
	return 0, f.err
}

func sessionOrder() models.Order {
	return models.Order{
		ID:                "ORD-7",
		TotalWeight:       1000,
		DispatchStartDate: date(1),
		DispatchEndDate:   date(3),
		DailyWeightLimit:  500,
		DailyTruckLimit:   10,
		TripConfigMode:    models.FixedTripsPerDay,
		TripLimit:         2,
	}
}

func TestSession_EditsAreImmutable(t *testing.T) {
	s0 := allocation.NewSession(sessionOrder(), nil)
	assert.NotEqual(t, uuid.Nil, s0.ID())
	assert.Equal(t, allocation.Editing, s0.State())

	s1, err := s0.AddTransporter(models.Company{ID: "a", Name: "Acme", DefaultWeightPerTruck: 100})
	require.NoError(t, err)
	s2, err := s1.SetWeight("a", 600)
	require.NoError(t, err)

	assert.Empty(t, s0.Plan().Allocations)
	assert.Equal(t, 0.0, s1.Plan().Allocations[0].AllocatedWeight)
	assert.Equal(t, 600.0, s2.Plan().Allocations[0].AllocatedWeight)
	assert.Equal(t, s0.ID(), s2.ID())

	// mutating a returned plan does not leak back
	p := s2.Plan()
	p.Allocations[0].AllocatedWeight = 1
	p.Companies["x"] = models.Company{ID: "x"}
	assert.Equal(t, 600.0, s2.Plan().Allocations[0].AllocatedWeight)
	assert.NotContains(t, s2.Plan().Companies, "x")
}

func TestSession_EditErrors(t *testing.T) {
	s, err := allocation.NewSession(sessionOrder(), nil).AddTransporter(models.Company{ID: "a"})
	require.NoError(t, err)

	tests := map[string]struct {
		edit     func() error
		expected error
	}{
		"AddTwice": {
			edit:     func() error { _, err := s.AddTransporter(models.Company{ID: "a"}); return err },
			expected: customerrors.ErrTransporterDuplicated,
		},
		"WeightUnknown": {
			edit:     func() error { _, err := s.SetWeight("zz", 10); return err },
			expected: customerrors.ErrTransporterNotInPlan,
		},
		"NegativeWeight": {
			edit:     func() error { _, err := s.SetWeight("a", -1); return err },
			expected: customerrors.ErrInvalidWeight,
		},
		"NegativeTrucks": {
			edit:     func() error { _, err := s.SetTrucks("a", -2); return err },
			expected: customerrors.ErrInvalidTruckCount,
		},
		"RemoveUnknown": {
			edit:     func() error { _, err := s.RemoveTransporter("zz"); return err },
			expected: customerrors.ErrTransporterNotInPlan,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.edit()
			assert.True(t, errors.Is(err, tt.expected), "expected %v, got %v", tt.expected, err)
		})
	}
}

func TestSession_ValidateLifecycle(t *testing.T) {
	ctx := context.Background()
	src := fleet.Static{"a": 5, "b": 5}

	s := allocation.NewSession(sessionOrder(), nil)
	s, _ = s.AddTransporter(models.Company{ID: "a", Name: "Acme", DefaultWeightPerTruck: 100})
	s, _ = s.AddTransporter(models.Company{ID: "b", Name: "Bolt", DefaultWeightPerTruck: 100})
	s, _ = s.SetWeight("a", 600)
	s, _ = s.SetWeight("b", 300)
	s = s.SuggestTrucks()

	rejected, err := s.Validate(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, allocation.Rejected, rejected.State())
	require.NotNil(t, rejected.Report())
	assert.Equal(t, []string{"under_allocated"}, codes(rejected.Report()))

	edited, err := rejected.SetWeight("b", 400)
	require.NoError(t, err)
	assert.Equal(t, allocation.Editing, edited.State())
	assert.Nil(t, edited.Report())

	accepted, err := edited.Validate(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, allocation.Accepted, accepted.State())
	assert.True(t, accepted.Report().Accepted())
	assert.Equal(t, 1, accepted.Plan().Allocations[0].NumberOfTrucks)
}

func TestSession_ValidateFleetFailure(t *testing.T) {
	s, _ := allocation.NewSession(sessionOrder(), nil).AddTransporter(models.Company{ID: "a", DefaultWeightPerTruck: 100})

	boom := errors.New("db down")
	got, err := s.Validate(context.Background(), failingSource{err: boom})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, allocation.Editing, got.State())
}

func TestSession_RemoveTransporter(t *testing.T) {
	s, _ := allocation.NewSession(sessionOrder(), nil).AddTransporter(models.Company{ID: "a"})
	s, _ = s.AddTransporter(models.Company{ID: "b"})

	s, err := s.RemoveTransporter("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, s.Plan().CompanyIDs())
	assert.NotContains(t, s.Plan().Companies, "a")
}

func TestSessionFromPlan(t *testing.T) {
	plan := newPlan(125, 10, models.Allocation{CompanyID: "a", AllocatedWeight: 125})
	s := allocation.SessionFromPlan(plan).SuggestTrucks()

	assert.Equal(t, 3, s.Plan().Allocations[0].NumberOfTrucks)
	assert.Equal(t, 0, plan.Allocations[0].NumberOfTrucks, "source plan untouched")

	s = s.ValidateWith(models.FleetAvailability{"a": 3})
	assert.Equal(t, allocation.Accepted, s.State())
}
