package analytics

import (
	"encoding/json"
	"math"

	"shoppulse/internal/dataset"
)

// Rate is a ratio or percentage that may be undefined. A growth rate over a
// zero base, or a mean over an empty group, is Valid=false rather than 0 —
// callers must not treat undefined as zero.
type Rate struct {
	Value float64
	Valid bool
}

// NewRate returns a defined Rate
func NewRate(v float64) Rate {
	return Rate{Value: v, Valid: true}
}

// UndefinedRate returns the undefined state
func UndefinedRate() Rate {
	return Rate{}
}

// Float returns the value, or NaN when undefined
func (r Rate) Float() float64 {
	if !r.Valid {
		return math.NaN()
	}
	return r.Value
}

// MarshalJSON renders undefined rates as null
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts null as the undefined state
func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewRate(v)
	return nil
}

// growthRate computes (current-previous)/previous*100, undefined when the
// base is zero
func growthRate(current, previous float64) Rate {
	if previous == 0 {
		return UndefinedRate()
	}
	return NewRate((current - previous) / previous * 100)
}

// RevenueMetrics summarizes revenue KPIs for one period, optionally
// compared against a previous period
type RevenueMetrics struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrders       int     `json:"total_orders"`
	TotalItems        int     `json:"total_items"`
	AverageOrderValue Rate    `json:"average_order_value"`
	AverageItemPrice  Rate    `json:"average_item_price"`

	// Comparison fields, populated only when a previous period is supplied
	HasComparison     bool    `json:"has_comparison"`
	PreviousRevenue   float64 `json:"previous_revenue,omitempty"`
	PreviousOrders    int     `json:"previous_orders,omitempty"`
	PreviousAOV       Rate    `json:"previous_aov,omitempty"`
	RevenueGrowthRate Rate    `json:"revenue_growth_rate"`
	OrderGrowthRate   Rate    `json:"order_growth_rate"`
	AOVGrowthRate     Rate    `json:"aov_growth_rate"`
}

// MonthlyTrend is one month's revenue aggregates with month-over-month
// growth. The first month of a sequence has undefined growth.
type MonthlyTrend struct {
	Month         int     `json:"month"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	AOV           Rate    `json:"aov"`
	RevenueGrowth Rate    `json:"revenue_growth"`
	OrderGrowth   Rate    `json:"order_growth"`
	AOVGrowth     Rate    `json:"aov_growth"`
}

// CategoryPerformance is one product category's aggregates, display-rounded
// to 2 decimals
type CategoryPerformance struct {
	Category      string  `json:"category"`
	TotalRevenue  float64 `json:"total_revenue"`
	AveragePrice  float64 `json:"average_price"`
	TotalItems    int     `json:"total_items"`
	UniqueOrders  int     `json:"unique_orders"`
	RevenueShare  float64 `json:"revenue_share"`
	ItemsPerOrder float64 `json:"items_per_order"`
}

// StatePerformance is one customer state's aggregates
type StatePerformance struct {
	State              string  `json:"state"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalOrders        int     `json:"total_orders"`
	UniqueCustomers    int     `json:"unique_customers"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	OrdersPerCustomer  float64 `json:"orders_per_customer"`
	RevenueShare       float64 `json:"revenue_share"`
}

// SatisfactionMetrics summarizes review scores over unique orders
type SatisfactionMetrics struct {
	AverageRating      Rate        `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
	SatisfactionRate   Rate        `json:"satisfaction_rate"`
	NPSScore           Rate        `json:"nps_score"`
}

// DeliveryMetrics summarizes delivery timing over unique orders. Orders
// with unknown delivery speed count in the distribution but are excluded
// from the day statistics and rates.
type DeliveryMetrics struct {
	AverageDeliveryDays  Rate                             `json:"average_delivery_days"`
	MedianDeliveryDays   Rate                             `json:"median_delivery_days"`
	DeliveryDistribution map[dataset.DeliveryCategory]int `json:"delivery_distribution"`
	FastDeliveryRate     Rate                             `json:"fast_delivery_rate"`
	SlowDeliveryRate     Rate                             `json:"slow_delivery_rate"`
}

// SatisfactionByDelivery is one delivery bucket's review statistics.
// RatingStdDev is the sample standard deviation, undefined below two
// observations.
type SatisfactionByDelivery struct {
	Category         dataset.DeliveryCategory `json:"delivery_category"`
	AverageRating    float64                  `json:"average_rating"`
	ReviewCount      int                      `json:"review_count"`
	RatingStdDev     Rate                     `json:"rating_std_dev"`
	SatisfactionRate float64                  `json:"satisfaction_rate"`
}

// round2 rounds to 2 decimal places for display consistency
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round3 rounds to 3 decimal places
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
