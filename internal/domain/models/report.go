package models

import "time"

// CostReport is the augmented inventory table at one point in time.
type CostReport struct {
	Params        CostParams     `json:"params" bson:"params"`
	TransportCost float64        `json:"transport_cost" bson:"transport_cost"`
	Rows          []CostedRecord `json:"rows" bson:"rows"`
	BestProduct   string         `json:"best_product,omitempty" bson:"best_product,omitempty"`
	GeneratedAt   time.Time      `json:"generated_at" bson:"generated_at"`
}

// InvalidRows counts rows rendered as N/A.
func (r CostReport) InvalidRows() int {
	var n int
	for _, row := range r.Rows {
		if !row.Valid() {
			n++
		}
	}
	return n
}

// CostSnapshot represents a persisted cost report stored in MongoDB.
type CostSnapshot struct {
	ID        string     `bson:"_id" json:"id"`
	Report    CostReport `bson:"report" json:"report"`
	Source    string     `bson:"source" json:"source"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// ChartPoint is one bar of the product -> total annual cost chart.
type ChartPoint struct {
	Product         string  `json:"product"`
	TotalAnnualCost float64 `json:"total_annual_cost"`
}
