package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"fleet-allocation/errors"
	"fleet-allocation/metrics"
	"fleet-allocation/models"
)

// ParseAllocations reads allocation rows from CSV:
//
//	company_id, allocated_weight, number_of_trucks
//
// Lines starting with '#' are headers/comments. Weights are kilograms.
func ParseAllocations(r io.Reader) ([]models.Allocation, error) {
	var allocations []models.Allocation

	err := readRecords(r, 3, func(lineNum int, record []string) error {
		a := models.Allocation{CompanyID: strings.TrimSpace(record[0])}
		if a.CompanyID == "" {
			return fail(lineNum, record, errors.ErrInvalidCompanyID, nil)
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return fail(lineNum, record, errors.ErrInvalidWeight, err)
		}
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fail(lineNum, record, errors.ErrInvalidWeight, fmt.Errorf("must be a finite number >= 0, got %v", weight))
		}
		a.AllocatedWeight = weight

		trucks, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return fail(lineNum, record, errors.ErrInvalidTruckCount, err)
		}
		if trucks < 0 {
			return fail(lineNum, record, errors.ErrInvalidTruckCount, fmt.Errorf("must be >= 0, got %d", trucks))
		}
		a.NumberOfTrucks = trucks

		allocations = append(allocations, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ParserRecordsTotal.WithLabelValues("allocations").Add(float64(len(allocations)))
	return allocations, nil
}

// ParseFleet reads fleet availability from CSV:
//
//	company_id, available_trucks
func ParseFleet(r io.Reader) (models.FleetAvailability, error) {
	fleet := models.FleetAvailability{}

	err := readRecords(r, 2, func(lineNum int, record []string) error {
		id := strings.TrimSpace(record[0])
		if id == "" {
			return fail(lineNum, record, errors.ErrInvalidCompanyID, nil)
		}
		n, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return fail(lineNum, record, errors.ErrInvalidTruckCount, err)
		}
		if n < 0 {
			return fail(lineNum, record, errors.ErrInvalidTruckCount, fmt.Errorf("must be >= 0, got %d", n))
		}
		fleet[id] = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ParserRecordsTotal.WithLabelValues("fleet").Add(float64(len(fleet)))
	return fleet, nil
}

// readRecords calls fn for every data record with exactly fields fields.
func readRecords(r io.Reader, fields int, fn func(lineNum int, record []string) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
			return fmt.Errorf("error reading CSV: %w", err)
		}
		lineNum, _ := reader.FieldPos(0)

		// Handle headers/comments
		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}

		if len(record) != fields {
			return fail(lineNum, record, errors.ErrInvalidFieldCount, nil)
		}

		if err := fn(lineNum, record); err != nil {
			return err
		}
	}
}

func fail(lineNum int, record []string, kind error, cause error) error {
	metrics.ParserErrorsTotal.WithLabelValues(strings.ReplaceAll(kind.Error(), " ", "_")).Inc()

	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %v", kind, cause)
	}
	return &errors.ParseError{
		Line:   lineNum,
		Record: record,
		Err:    err,
	}
}
