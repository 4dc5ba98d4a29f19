// Package metrics provides Prometheus observability metrics for the allocation engine.
// It includes Critical and Important metrics for business and operational visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// ValidationsTotal counts validation runs by outcome (accepted|rejected).
var ValidationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "allocation",
	Name:      "validations_total",
	Help:      "Total allocation validations by outcome",
}, []string{"outcome"})

// ViolationsTotal counts violations by kind.
// A steady rise of one kind usually points at bad master data (capacity, fleet).
var ViolationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "allocation",
	Name:      "violations_total",
	Help:      "Total allocation violations by kind",
}, []string{"kind"})

// WarningsTotal counts non-blocking warnings by kind.
var WarningsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "allocation",
	Name:      "warnings_total",
	Help:      "Total allocation warnings by kind",
}, []string{"kind"})

// AllocatedWeight tracks the weight allocated in the last validated plan.
var AllocatedWeight = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "allocation",
	Name:      "allocated_weight_kg",
	Help:      "Sum of allocated weight in the last validated plan",
})

// UncoveredWeight tracks the absolute gap between allocated and order weight.
var UncoveredWeight = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "allocation",
	Name:      "uncovered_weight_kg",
	Help:      "Absolute difference between order weight and allocated weight in the last validated plan",
})

// TrucksCommitted tracks the trucks committed in the last validated plan.
var TrucksCommitted = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "allocation",
	Name:      "trucks_committed",
	Help:      "Total trucks committed in the last validated plan",
})

// TrucksRequired tracks the minimum trucks required in the last validated plan.
var TrucksRequired = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "allocation",
	Name:      "trucks_required",
	Help:      "Minimum trucks required across transporters in the last validated plan",
})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total input records successfully parsed",
}, []string{"input"})

// FleetLookupErrorsTotal counts failed fleet availability lookups.
var FleetLookupErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "fleet",
	Name:      "lookup_errors_total",
	Help:      "Total failed fleet availability lookups",
})

// OperationDurationSeconds tracks time spent per named operation.
var OperationDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "engine",
	Name:      "operation_duration_seconds",
	Help:      "Time taken by engine operations",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0},
}, []string{"op"})

// TransportersPerPlan tracks how many transporters each validated plan carries.
var TransportersPerPlan = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "allocation",
	Name:      "transporters_per_plan",
	Help:      "Number of transporters per validated plan",
	Buckets:   []float64{1, 2, 3, 5, 10, 25, 50},
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetPlanGauges resets all per-plan gauges before a new validation run.
func ResetPlanGauges() {
	AllocatedWeight.Set(0)
	UncoveredWeight.Set(0)
	TrucksCommitted.Set(0)
	TrucksRequired.Set(0)
}
