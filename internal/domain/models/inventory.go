package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDuplicateProduct indicates a record with the same product already exists in the table.
var ErrDuplicateProduct = errors.New("product already exists")

// ErrProductNotFound indicates the referenced product is not part of the table.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidRecord indicates the record payload failed validation.
var ErrInvalidRecord = errors.New("invalid inventory record")

// InventoryRecord is one row of the inventory table.
type InventoryRecord struct {
	Product      string   `json:"product" bson:"product" binding:"required"`
	AnnualDemand float64  `json:"annual_demand" bson:"annual_demand"`
	OrderCost    float64  `json:"order_cost" bson:"order_cost"`
	HoldingCost  float64  `json:"holding_cost" bson:"holding_cost"`
	UnitPrice    *float64 `json:"unit_price,omitempty" bson:"unit_price,omitempty"`
}

// Validate checks the fields a table can hold. A non-positive holding cost is
// accepted here; the calculator reports it per row instead.
func (r InventoryRecord) Validate() error {
	if strings.TrimSpace(r.Product) == "" {
		return fmt.Errorf("%w: product must not be empty", ErrInvalidRecord)
	}
	for name, v := range map[string]float64{
		"annual_demand": r.AnnualDemand,
		"order_cost":    r.OrderCost,
		"holding_cost":  r.HoldingCost,
	} {
		if !finite(v) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidRecord, name)
		}
	}
	if r.UnitPrice != nil && !finite(*r.UnitPrice) {
		return fmt.Errorf("%w: unit_price must be a finite number", ErrInvalidRecord)
	}
	if r.AnnualDemand < 0 {
		return fmt.Errorf("%w: annual_demand must not be negative", ErrInvalidRecord)
	}
	if r.OrderCost < 0 {
		return fmt.Errorf("%w: order_cost must not be negative", ErrInvalidRecord)
	}
	if r.UnitPrice != nil && *r.UnitPrice < 0 {
		return fmt.Errorf("%w: unit_price must not be negative", ErrInvalidRecord)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CostParams are the table-wide logistics parameters.
type CostParams struct {
	Distance  float64 `json:"distance" bson:"distance"`
	RatePerKm float64 `json:"rate_per_km" bson:"rate_per_km"`
}

// CostedRecord is an inventory row augmented with its derived cost fields.
// EOQ and TotalAnnualCost are nil when the row cannot be evaluated.
type CostedRecord struct {
	InventoryRecord `bson:",inline"`
	EOQ             *float64 `json:"eoq" bson:"eoq"`
	TransportCost   float64  `json:"transport_cost" bson:"transport_cost"`
	TotalAnnualCost *float64 `json:"total_annual_cost" bson:"total_annual_cost"`
	Error           string   `json:"error,omitempty" bson:"error,omitempty"`
}

// Valid reports whether both derived fields were computed.
func (r CostedRecord) Valid() bool {
	return r.EOQ != nil && r.TotalAnnualCost != nil
}
