package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Input errors returned by the parsers.
var (
	ErrInvalidFieldCount     = fmt.Errorf("invalid field count")
	ErrInvalidCompanyID      = fmt.Errorf("invalid company id")
	ErrInvalidWeight         = fmt.Errorf("invalid weight")
	ErrInvalidTruckCount     = fmt.Errorf("invalid number of trucks")
	ErrInvalidDate           = fmt.Errorf("invalid date")
	ErrInvalidDateRange      = fmt.Errorf("dispatch end date before start date")
	ErrInvalidTripConfig     = fmt.Errorf("invalid trip configuration")
	ErrInvalidPlan           = fmt.Errorf("invalid plan")
	ErrEmptyRecord           = fmt.Errorf("empty record")
	ErrUnknownCompany        = fmt.Errorf("unknown company")
	ErrFleetLookup           = fmt.Errorf("fleet lookup failed")
	ErrTransporterNotInPlan  = fmt.Errorf("transporter not in plan")
	ErrTransporterDuplicated = fmt.Errorf("transporter already in plan")
)

// Violation kinds produced by allocation validation.
var (
	ErrEmptyAllocation          = fmt.Errorf("empty allocation")
	ErrZeroCapacity             = fmt.Errorf("zero truck capacity")
	ErrDuplicateTransporter     = fmt.Errorf("duplicate transporter")
	ErrInsufficientFleet        = fmt.Errorf("insufficient fleet")
	ErrBelowMinimumTrucks       = fmt.Errorf("below minimum trucks")
	ErrExceedsFleet             = fmt.Errorf("exceeds fleet")
	ErrUnderAllocated           = fmt.Errorf("under allocated")
	ErrOverAllocated            = fmt.Errorf("over allocated")
	ErrDailyWeightLimitExceeded = fmt.Errorf("daily weight limit exceeded")
	ErrDailyTruckLimitExceeded  = fmt.Errorf("daily truck limit exceeded")
)

var violationCodes = map[error]string{
	ErrEmptyAllocation:          "empty_allocation",
	ErrZeroCapacity:             "zero_capacity",
	ErrDuplicateTransporter:     "duplicate_transporter",
	ErrInsufficientFleet:        "insufficient_fleet",
	ErrBelowMinimumTrucks:       "below_minimum_trucks",
	ErrExceedsFleet:             "exceeds_fleet",
	ErrUnderAllocated:           "under_allocated",
	ErrOverAllocated:            "over_allocated",
	ErrDailyWeightLimitExceeded: "daily_weight_limit_exceeded",
	ErrDailyTruckLimitExceeded:  "daily_truck_limit_exceeded",
}

// Violation is a single rule broken by an allocation set.
// CompanyID is empty for order-level violations.
type Violation struct {
	Kind      error   `json:"-"`
	CompanyID string  `json:"company_id,omitempty"`
	Company   string  `json:"company,omitempty"`
	Message   string  `json:"message"`
	Required  int     `json:"required,omitempty"`
	Available int     `json:"available,omitempty"`
	Trucks    int     `json:"trucks,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
}

func (v *Violation) Error() string {
	return v.Message
}

func (v *Violation) Unwrap() error {
	return v.Kind
}

// MarshalJSON adds the kind code to the encoded violation.
func (v *Violation) MarshalJSON() ([]byte, error) {
	type plain Violation
	return json.Marshal(struct {
		Code string `json:"code"`
		plain
	}{Code: v.Code(), plain: plain(*v)})
}

// Code returns a stable snake_case identifier of the violation kind.
func (v *Violation) Code() string {
	return Code(v.Kind)
}

// Code maps a violation kind to its identifier, or "unknown".
func Code(kind error) string {
	if c, ok := violationCodes[kind]; ok {
		return c
	}
	return "unknown"
}

// ValidationError aggregates every violation found for a plan.
type ValidationError struct {
	Violations []*Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("allocation rejected with %d violation(s): %s", len(e.Violations), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}
