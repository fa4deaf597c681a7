// Package eoq computes the Economic Order Quantity and the total annual
// logistics cost of inventory rows. Every function is a pure transform of its
// arguments.
package eoq

import (
	"errors"
	"fmt"
	"math"

	"github.com/mamadbah2/logistics/internal/domain/models"
)

var (
	// ErrNonPositiveHoldingCost is returned when holding cost is zero or negative.
	ErrNonPositiveHoldingCost = errors.New("holding cost must be greater than zero")
	// ErrZeroEOQ is returned when the order quantity is zero and the ordering term is undefined.
	ErrZeroEOQ = errors.New("economic order quantity is zero")
	// ErrNegativeInput is returned for negative demand, order cost, distance or rate.
	ErrNegativeInput = errors.New("input must not be negative")
	// ErrNonFinite is returned for NaN or infinite inputs and for results that overflow.
	ErrNonFinite = errors.New("value is not a finite number")
	// ErrEmptyInput is returned by BestProduct when there is nothing to compare.
	ErrEmptyInput = errors.New("no records to compare")
)

// DomainError reports an input for which a formula is undefined.
type DomainError struct {
	Op    string
	Field string
	Err   error
}

func (e *DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// IsDomainError reports whether err carries a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ComputeEOQ returns sqrt(2*demand*orderCost/holdingCost).
func ComputeEOQ(annualDemand, orderCost, holdingCost float64) (float64, error) {
	const op = "compute eoq"

	switch {
	case !isFinite(annualDemand):
		return 0, &DomainError{Op: op, Field: "annual_demand", Err: ErrNonFinite}
	case !isFinite(orderCost):
		return 0, &DomainError{Op: op, Field: "order_cost", Err: ErrNonFinite}
	case !isFinite(holdingCost):
		return 0, &DomainError{Op: op, Field: "holding_cost", Err: ErrNonFinite}
	case annualDemand < 0:
		return 0, &DomainError{Op: op, Field: "annual_demand", Err: ErrNegativeInput}
	case orderCost < 0:
		return 0, &DomainError{Op: op, Field: "order_cost", Err: ErrNegativeInput}
	case holdingCost <= 0:
		return 0, &DomainError{Op: op, Field: "holding_cost", Err: ErrNonPositiveHoldingCost}
	}

	q := math.Sqrt((2 * annualDemand * orderCost) / holdingCost)
	if !isFinite(q) {
		return 0, &DomainError{Op: op, Field: "eoq", Err: ErrNonFinite}
	}
	return q, nil
}

// ComputeTotalAnnualCost returns ordering + holding + transport cost for a
// record whose EOQ has already been computed.
func ComputeTotalAnnualCost(record models.InventoryRecord, eoq, transportCost float64) (float64, error) {
	const op = "compute total annual cost"

	if !isFinite(eoq) || !isFinite(transportCost) {
		return 0, &DomainError{Op: op, Field: "eoq", Err: ErrNonFinite}
	}
	if eoq <= 0 {
		return 0, &DomainError{Op: op, Field: "eoq", Err: ErrZeroEOQ}
	}

	ordering := (record.AnnualDemand / eoq) * record.OrderCost
	holding := (eoq / 2) * record.HoldingCost
	total := ordering + holding + transportCost
	if !isFinite(total) {
		return 0, &DomainError{Op: op, Field: "total_annual_cost", Err: ErrNonFinite}
	}
	return total, nil
}

// TransportCost returns the flat per-table transport cost.
func TransportCost(params models.CostParams) (float64, error) {
	const op = "compute transport cost"

	if !isFinite(params.Distance) {
		return 0, &DomainError{Op: op, Field: "distance", Err: ErrNonFinite}
	}
	if !isFinite(params.RatePerKm) {
		return 0, &DomainError{Op: op, Field: "rate_per_km", Err: ErrNonFinite}
	}
	if params.Distance < 0 {
		return 0, &DomainError{Op: op, Field: "distance", Err: ErrNegativeInput}
	}
	if params.RatePerKm < 0 {
		return 0, &DomainError{Op: op, Field: "rate_per_km", Err: ErrNegativeInput}
	}

	cost := params.Distance * params.RatePerKm
	if !isFinite(cost) {
		return 0, &DomainError{Op: op, Field: "transport_cost", Err: ErrNonFinite}
	}
	return cost, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Evaluate derives EOQ and total annual cost for a single row. A DomainError
// leaves the derived fields nil and records the message on the row.
func Evaluate(record models.InventoryRecord, transportCost float64) (models.CostedRecord, error) {
	out := models.CostedRecord{InventoryRecord: record, TransportCost: transportCost}

	q, err := ComputeEOQ(record.AnnualDemand, record.OrderCost, record.HoldingCost)
	if err != nil {
		out.Error = err.Error()
		return out, err
	}

	total, err := ComputeTotalAnnualCost(record, q, transportCost)
	if err != nil {
		out.Error = err.Error()
		return out, err
	}

	out.EOQ = &q
	out.TotalAnnualCost = &total
	return out, nil
}

// BestProduct returns the product with the lowest total annual cost. Rows
// without a computed total are skipped; the first minimum wins on ties.
func BestProduct(rows []models.CostedRecord) (string, error) {
	best := -1
	for i, row := range rows {
		if row.TotalAnnualCost == nil {
			continue
		}
		if best < 0 || *row.TotalAnnualCost < *rows[best].TotalAnnualCost {
			best = i
		}
	}

	if best < 0 {
		return "", ErrEmptyInput
	}
	return rows[best].Product, nil
}
