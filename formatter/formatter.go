package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fleet-allocation/allocation"
	customerrors "fleet-allocation/errors"
)

// ReportData holds prepared report data used by all formatters
type ReportData struct {
	Accepted    bool                                 `json:"accepted"`
	Report      *allocation.Report                   `json:"report"`
	ByCompany   map[string][]*customerrors.Violation `json:"-"`
	OrderLevel  []*customerrors.Violation            `json:"-"`
	StatusLabel string                               `json:"status"`
}

// prepareReportData splits violations into per-transporter and order-level groups
func prepareReportData(report *allocation.Report) *ReportData {
	data := &ReportData{
		Accepted:    report.Accepted(),
		Report:      report,
		ByCompany:   make(map[string][]*customerrors.Violation),
		StatusLabel: "ACCEPTED",
	}
	if !data.Accepted {
		data.StatusLabel = "REJECTED"
	}

	for _, v := range report.Violations {
		if v.CompanyID == "" {
			data.OrderLevel = append(data.OrderLevel, v)
			continue
		}
		data.ByCompany[v.CompanyID] = append(data.ByCompany[v.CompanyID], v)
	}

	return data
}

// FormatText returns the text representation of the report
func FormatText(report *allocation.Report) string {
	data := prepareReportData(report)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Order %s : %d day(s) ; allocated=%s/%s kg ; daily=%s/%s kg ; trucks=%d/%d\n",
		report.OrderID, report.DurationDays,
		num(report.AllocatedWeight), num(report.TotalWeight),
		num(report.DailyWeight), num(report.DailyWeightLimit),
		report.TotalTrucks, report.DailyTruckLimit))

	for _, line := range report.Lines {
		sb.WriteString(formatTextLine(line))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Status: %s", data.StatusLabel))
	if n := len(report.Violations); n > 0 {
		sb.WriteString(fmt.Sprintf(" (%d violation(s))", n))
	}
	sb.WriteString("\n")

	for _, v := range report.Violations {
		sb.WriteString(fmt.Sprintf("  ⚠️  %s: %s\n", v.Code(), v.Message))
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range report.Warnings {
			sb.WriteString(fmt.Sprintf("    • %s: %s\n", w.Code, w.Message))
		}
	}

	return sb.String()
}

// FormatJSON returns the JSON representation of the report
func FormatJSON(report *allocation.Report) string {
	data := prepareReportData(report)
	jsonBytes, _ := json.MarshalIndent(data, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the report
func FormatCSV(report *allocation.Report) string {
	data := prepareReportData(report)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	writer.Write([]string{
		"Company ID", "Company", "Allocated Weight", "Trucks", "Minimum Trucks",
		"Available Trucks", "Trips Per Day", "Capacity Per Truck", "Violations",
	})

	for _, line := range report.Lines {
		writer.Write([]string{
			line.CompanyID,
			line.Company,
			num(line.AllocatedWeight),
			strconv.Itoa(line.NumberOfTrucks),
			strconv.Itoa(line.MinimumTrucks),
			strconv.Itoa(line.AvailableTrucks),
			num(line.Estimate.TripsPerDay),
			num(line.Estimate.CapacityPerTruck),
			joinViolations(data.ByCompany[line.CompanyID]),
		})
	}

	// Order totals row
	writer.Write([]string{
		"ORDER",
		report.OrderID,
		num(report.AllocatedWeight),
		strconv.Itoa(report.TotalTrucks),
		strconv.Itoa(report.RequiredTrucks()),
		"",
		"",
		"",
		joinViolations(data.OrderLevel),
	})

	writer.Flush()
	return sb.String()
}

// formatTextLine formats a single transporter line for text output
func formatTextLine(line allocation.Line) string {
	return fmt.Sprintf("  %s (%s): weight=%s ; trucks=%d ; min=%d ; available=%d ; trips/day=%s ; capacity/truck=%s",
		line.CompanyID, line.Company, num(line.AllocatedWeight),
		line.NumberOfTrucks, line.MinimumTrucks, line.AvailableTrucks,
		num(line.Estimate.TripsPerDay), num(line.Estimate.CapacityPerTruck))
}

// joinViolations builds "code(message); code(message)"
func joinViolations(vs []*customerrors.Violation) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, fmt.Sprintf("%s(%s)", v.Code(), v.Message))
	}
	return strings.Join(parts, "; ")
}

// num prints a number without trailing zeros, at most 4 decimals
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
