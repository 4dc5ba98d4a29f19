package allocation

import (
	"context"
	"fmt"
	"log"
	"maps"
	"math"
	"slices"

	"fleet-allocation/capacity"
	customerrors "fleet-allocation/errors"
	"fleet-allocation/fleet"
	"fleet-allocation/metrics"
	"fleet-allocation/models"

	"github.com/google/uuid"
)

// State is the position of a planning session in its lifecycle.
type State string

const (
	Editing    State = "editing"
	Validating State = "validating"
	Accepted   State = "accepted"
	Rejected   State = "rejected"
)

// Session is the caller-held state of one order's allocation planning.
// Every method returns a new Session and leaves the receiver untouched, so a
// Session can be shared freely between goroutines.
type Session struct {
	id     uuid.UUID
	plan   models.Plan
	state  State
	report *Report
}

// NewSession starts planning order with no transporters.
func NewSession(order models.Order, site *models.Site) Session {
	return Session{
		id: uuid.New(),
		plan: models.Plan{
			Order:     order,
			Site:      site,
			Companies: map[string]models.Company{},
		},
		state: Editing,
	}
}

// SessionFromPlan resumes planning from an existing allocation set.
func SessionFromPlan(plan models.Plan) Session {
	s := NewSession(plan.Order, plan.Site)
	s.plan.Companies = maps.Clone(plan.Companies)
	if s.plan.Companies == nil {
		s.plan.Companies = map[string]models.Company{}
	}
	s.plan.Allocations = slices.Clone(plan.Allocations)
	return s
}

func (s Session) ID() uuid.UUID   { return s.id }
func (s Session) State() State    { return s.state }
func (s Session) Report() *Report { return s.report }

// Plan returns a copy of the session's plan.
func (s Session) Plan() models.Plan {
	p := s.plan
	p.Companies = maps.Clone(s.plan.Companies)
	p.Allocations = slices.Clone(s.plan.Allocations)
	return p
}

// edit returns a copy in the editing state for fn to modify.
func (s Session) edit(fn func(p *models.Plan)) Session {
	next := Session{id: s.id, plan: s.Plan(), state: Editing}
	if next.plan.Companies == nil {
		next.plan.Companies = map[string]models.Company{}
	}
	fn(&next.plan)
	return next
}

func (s Session) index(companyID string) int {
	return slices.IndexFunc(s.plan.Allocations, func(a models.Allocation) bool {
		return a.CompanyID == companyID
	})
}

// AddTransporter adds company with an empty allocation.
func (s Session) AddTransporter(company models.Company) (Session, error) {
	if s.index(company.ID) >= 0 {
		return s, fmt.Errorf("%w: %s", customerrors.ErrTransporterDuplicated, company.ID)
	}
	return s.edit(func(p *models.Plan) {
		p.Companies[company.ID] = company
		p.Allocations = append(p.Allocations, models.Allocation{CompanyID: company.ID})
	}), nil
}

// RemoveTransporter drops the transporter and its allocation.
func (s Session) RemoveTransporter(companyID string) (Session, error) {
	i := s.index(companyID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", customerrors.ErrTransporterNotInPlan, companyID)
	}
	return s.edit(func(p *models.Plan) {
		p.Allocations = slices.Delete(p.Allocations, i, i+1)
		delete(p.Companies, companyID)
	}), nil
}

// SetWeight changes the weight allocated to a transporter.
func (s Session) SetWeight(companyID string, weight float64) (Session, error) {
	i := s.index(companyID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", customerrors.ErrTransporterNotInPlan, companyID)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return s, fmt.Errorf("%w: %v", customerrors.ErrInvalidWeight, weight)
	}
	return s.edit(func(p *models.Plan) {
		p.Allocations[i].AllocatedWeight = weight
	}), nil
}

// SetTrucks changes the trucks committed by a transporter.
func (s Session) SetTrucks(companyID string, trucks int) (Session, error) {
	i := s.index(companyID)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", customerrors.ErrTransporterNotInPlan, companyID)
	}
	if trucks < 0 {
		return s, fmt.Errorf("%w: %d", customerrors.ErrInvalidTruckCount, trucks)
	}
	return s.edit(func(p *models.Plan) {
		p.Allocations[i].NumberOfTrucks = trucks
	}), nil
}

// SuggestTrucks sets every allocation's truck count to its minimum.
func (s Session) SuggestTrucks() Session {
	return s.edit(func(p *models.Plan) {
		for i, a := range p.Allocations {
			est := capacity.ForCompany(p.Order, p.Site, p.Companies[a.CompanyID])
			p.Allocations[i].NumberOfTrucks = est.MinimumTrucks(a.AllocatedWeight)
		}
	})
}

// Validate refreshes fleet availability from src and validates the plan.
// The returned session is Accepted or Rejected; on a lookup error the
// receiver is returned unchanged with the error.
func (s Session) Validate(ctx context.Context, src fleet.Source) (Session, error) {
	log.Printf("session=%s order=%s state=%s", s.id, s.plan.Order.ID, Validating)

	available, err := fleet.Resolve(ctx, src, s.plan.CompanyIDs())
	if err != nil {
		return s, err
	}
	return s.ValidateWith(available), nil
}

// ValidateWith validates the plan against already resolved availability.
func (s Session) ValidateWith(available models.FleetAvailability) Session {
	next := Session{id: s.id, plan: s.Plan()}
	next.report = evaluate(next.plan, available)
	next.state = Rejected
	if next.report.Accepted() {
		next.state = Accepted
	}

	log.Printf("session=%s order=%s state=%s violations=%d",
		next.id, next.plan.Order.ID, next.state, len(next.report.Violations))
	return next
}

// evaluate runs Check and records the outcome.
func evaluate(plan models.Plan, available models.FleetAvailability) (r *Report) {
	defer metrics.Time(context.Background(), "allocation.Check")(nil)

	r = Check(plan, available)
	recordMetrics(r)
	return r
}

func recordMetrics(r *Report) {
	metrics.ResetPlanGauges()

	outcome := string(Rejected)
	if r.Accepted() {
		outcome = string(Accepted)
	}
	metrics.ValidationsTotal.WithLabelValues(outcome).Inc()
	for _, v := range r.Violations {
		metrics.ViolationsTotal.WithLabelValues(v.Code()).Inc()
	}
	for _, w := range r.Warnings {
		metrics.WarningsTotal.WithLabelValues(w.Code).Inc()
	}

	metrics.AllocatedWeight.Set(r.AllocatedWeight)
	metrics.UncoveredWeight.Set(math.Abs(r.TotalWeight - r.AllocatedWeight))
	metrics.TrucksCommitted.Set(float64(r.TotalTrucks))
	metrics.TrucksRequired.Set(float64(r.RequiredTrucks()))
	metrics.TransportersPerPlan.Observe(float64(len(r.Lines)))
}
